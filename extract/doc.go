// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package extract turns dropped files into plain text.
//
// Files are classified by extension into a closed set of formats. PDFs are
// passed through ocrmypdf and read page by page, images go through tesseract,
// .eml messages are parsed with their text/plain parts concatenated, and
// everything else is read as UTF-8 text. External programs are invoked through
// a CommandRunner so tests can substitute them.
package extract
