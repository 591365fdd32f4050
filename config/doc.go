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


// Package config assembles the startup configuration of docvault.
//
// Values are layered, later layers winning: built-in defaults, an optional
// TOML file, an optional .env file, the process environment and finally
// command-line flags (applied by the caller). The result is read once at
// startup and never reloaded.
package config
