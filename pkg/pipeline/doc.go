// Copyright (c) 2025, ChaosExp Authors.  All rights reserved.
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

// Package pipeline sequences one chaos experiment end to end: resolve the
// target, render the experiment document, capture a baseline, trigger the
// disruption, sample while it unfolds, capture the post state, compare, and
// persist the run artifacts. Phases run strictly in order; a phase never
// starts before the previous one returns.
package pipeline
