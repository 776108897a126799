// Copyright 2015 Google Inc. All Rights Reserved.
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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOptions(t *testing.T) {
	m := make(map[string]string)
	ParseOptions(m, "rw,noatime,volname=Stuff")

	assert.Equal(t, "", m["rw"])
	assert.Equal(t, "", m["noatime"])
	assert.Equal(t, "Stuff", m["volname"])
}

func TestParseOptions_SkipsEmptyEntries(t *testing.T) {
	m := make(map[string]string)
	ParseOptions(m, "rw,,noatime")

	assert.Len(t, m, 2)
	assert.Contains(t, m, "rw")
	assert.Contains(t, m, "noatime")
}

func TestParseOptions_LaterEntryOverwrites(t *testing.T) {
	m := make(map[string]string)
	ParseOptions(m, "volname=First")
	ParseOptions(m, "volname=Second")

	assert.Equal(t, "Second", m["volname"])
}

func TestBuildArgv(t *testing.T) {
	argv := BuildArgv("/bin/myfs", true, true, []string{"rw", "", "volname=Stuff"}, "/Volumes/Mine")

	assert.Equal(t, []string{
		"/bin/myfs",
		"-s",
		"-f",
		"-orw",
		"-ovolname=Stuff",
		"/Volumes/Mine",
	}, argv)
}

func TestBuildArgv_OmitsOptionalFlags(t *testing.T) {
	argv := BuildArgv("/bin/myfs", false, false, nil, "/Volumes/Mine")

	assert.Equal(t, []string{"/bin/myfs", "/Volumes/Mine"}, argv)
}
