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

package finderflags

import "testing"

func TestSetAndHas(t *testing.T) {
	var f Flags

	if f.Has(KIsInvisible) {
		t.Fatalf("zero value should not have kIsInvisible set")
	}

	f = f.Set(KIsInvisible)
	if !f.Has(KIsInvisible) {
		t.Fatalf("expected kIsInvisible set")
	}
	if f.Has(KHasCustomIcon) {
		t.Fatalf("kHasCustomIcon should not be set")
	}

	f = f.Set(KHasCustomIcon)
	if !f.Has(KIsInvisible) || !f.Has(KHasCustomIcon) {
		t.Fatalf("expected both bits set, got %016b", f)
	}
}

func TestHasRequiresAllBitsInMask(t *testing.T) {
	f := Flags(0).Set(KIsInvisible)
	combined := KIsInvisible | KHasCustomIcon
	if f.Has(combined) {
		t.Fatalf("Has should require every bit in the mask")
	}
}
