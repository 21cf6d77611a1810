/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import "context"

// ConfigLoader fills dst from a source. path is ignored by loaders that do
// not read files.
type ConfigLoader interface { //nolint:revive // matches the loader naming used across services
	Load(ctx context.Context, path string, dst interface{}) error
}

// Validator is implemented by configs with rules struct tags cannot express.
type Validator interface {
	Validate() error
}
