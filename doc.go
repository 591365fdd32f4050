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


// Package docvault wires the document pipeline together.
//
// A Vault owns the vector index and the vector generator selected by a
// config.Config and hands out the stages that use them: the extraction stage
// that drains the inbox into the archive and staging queue, the sync stage
// that embeds staged sidecars and live documents into the index, the archive
// reindexer and the searcher.
package docvault
