/*
 * Copyright (C) 2024 IBM, Inc.
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
 *
 */

package detect

import (
	"fmt"

	"github.com/intentwatch/surge-pipeline/pkg/api"
	ms "github.com/mitchellh/mapstructure"
)

// decodePartialConfig merges a partial configuration map onto an existing
// configuration value. Only keys present in the map are written; everything
// else keeps its prior value.
func decodePartialConfig(partial map[string]interface{}, out *api.SurgeDetection) error {
	decoder, err := ms.NewDecoder(&ms.DecoderConfig{
		Result:           out,
		TagName:          api.TagYaml,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return fmt.Errorf("can't create config decoder: %w", err)
	}
	if err := decoder.Decode(partial); err != nil {
		return fmt.Errorf("can't merge partial config: %w", err)
	}
	return nil
}
