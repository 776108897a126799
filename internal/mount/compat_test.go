// Copyright 2024 Google Inc. All Rights Reserved.
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

package mount

import "testing"

func TestDefaultListDoubleFiles(t *testing.T) {
	for _, tc := range []struct {
		name string
		env  string
		want bool
	}{
		{"unset defaults to modern", "", false},
		{"major 8 is legacy", "8", true},
		{"major 9 is modern", "9", false},
		{"major 10 is modern", "10", false},
		{"garbage defaults to modern", "not-a-number", false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(fuseMajorVersionEnv, tc.env)
			if got := DefaultListDoubleFiles(); got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}
