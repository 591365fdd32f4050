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


// Package poll runs the fixed-interval loops that drive the pipeline stages.
//
// Each loop performs one pass immediately, then one pass per interval until
// its context is cancelled. A pass that fails is logged and the loop keeps
// going. Passes can also be triggered early through a wake channel, which
// Watch feeds from filesystem notifications; the interval still applies.
package poll
