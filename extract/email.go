package extract

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"os"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// EmailExtractor parses RFC 5322 messages.
type EmailExtractor struct{}

var headerDecoder = &mime.WordDecoder{CharsetReader: charsetReader}

// Extract surfaces subject, from, to and date as metadata and returns every
// text/plain part, trimmed and joined with newlines.
func (EmailExtractor) Extract(ctx context.Context, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	msg, err := mail.ReadMessage(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedEmail, err)
	}

	parts, err := plainTextParts(msg.Header, msg.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedEmail, err)
	}

	return &Result{
		Text: strings.Join(parts, "\n"),
		Metadata: map[string]any{
			"format":  string(FormatEmail),
			"subject": decodeHeader(msg.Header.Get("Subject")),
			"from":    decodeHeader(msg.Header.Get("From")),
			"to":      decodeHeader(msg.Header.Get("To")),
			"date":    msg.Header.Get("Date"),
		},
	}, nil
}

// header is the subset of textproto.MIMEHeader and mail.Header used below.
type header interface {
	Get(key string) string
}

// plainTextParts walks an entity and collects decoded text/plain bodies.
func plainTextParts(h header, body io.Reader) ([]string, error) {
	contentType := h.Get("Content-Type")
	if contentType == "" {
		contentType = "text/plain"
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType, params = "text/plain", nil
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" {
			return nil, fmt.Errorf("multipart without boundary")
		}
		var out []string
		mr := multipart.NewReader(body, boundary)
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, err
			}
			nested, err := plainTextParts(part.Header, part)
			part.Close()
			if err != nil {
				return nil, err
			}
			out = append(out, nested...)
		}
		return out, nil
	}

	if mediaType != "text/plain" {
		return nil, nil
	}

	raw, err := io.ReadAll(decodeTransfer(h.Get("Content-Transfer-Encoding"), body))
	if err != nil {
		return nil, err
	}
	text, err := decodeCharset(params["charset"], raw)
	if err != nil {
		return nil, err
	}
	return []string{strings.TrimSpace(text)}, nil
}

func decodeTransfer(encoding string, r io.Reader) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, r)
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	default:
		return r
	}
}

// decodeCharset converts raw from charset into UTF-8. Unknown charsets pass through.
func decodeCharset(charset string, raw []byte) (string, error) {
	charset = strings.ToLower(strings.TrimSpace(charset))
	if charset == "" || charset == "utf-8" || charset == "us-ascii" {
		return strings.ToValidUTF8(string(raw), "\uFFFD"), nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return strings.ToValidUTF8(string(raw), "\uFFFD"), nil
	}
	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, err
	}
	return enc.NewDecoder().Reader(input), nil
}

// decodeHeader decodes RFC 2047 encoded words, returning the raw value on failure.
func decodeHeader(value string) string {
	if value == "" {
		return ""
	}
	decoded, err := headerDecoder.DecodeHeader(value)
	if err != nil {
		return value
	}
	return decoded
}
