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

package serializer

import "context"

// Serializer is an interface for serializing payloads such as target
// catalogs and run records. Implementations serialize to JSON, YAML, or
// plain-text tables.
type Serializer interface {
	Serialize(ctx context.Context, payload any) error
}

// Closer is an optional interface for Serializers that hold resources,
// such as open file handles.
type Closer interface {
	Close() error
}
