// Copyright 2025 quartzdb
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package util

type DataSource struct {
	Path   string `toml:"path"`
	Format string `toml:"format"`
}

type DebugOptions struct {
	PrintResult  bool `toml:"printResult"`
	PrintExplain bool `toml:"printExplain"`
	MaxOutputRow int  `toml:"maxOutputRowCount"`
}

type Config struct {
	TargetChunkSize int          `toml:"targetChunkSize"`
	Data            DataSource   `toml:"data"`
	Debug           DebugOptions `toml:"debug"`
}
