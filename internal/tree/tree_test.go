// Copyright 2023 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package tree

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAppendSiblings(t *testing.T) {
	tr := New[string]()
	a := tr.Append("a")
	b := tr.Append("b")
	c := tr.Append("c")

	got := tr.Children(NIL)
	want := []Index{a, b, c}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Children(NIL) (-want +got):\n%s", diff)
	}
	if got := tr.Next(a); got != b {
		t.Errorf("Next(a) = %v; want %v", got, b)
	}
	if got := tr.Next(c); got != NIL {
		t.Errorf("Next(c) = %v; want NIL", got)
	}
}

func TestPushPop(t *testing.T) {
	tr := New[string]()
	root := tr.Append("root")
	tr.Push()
	child1 := tr.Append("child1")
	child2 := tr.Append("child2")
	tr.Pop()
	sibling := tr.Append("sibling")

	if diff := cmp.Diff([]Index{root, sibling}, tr.Children(NIL)); diff != "" {
		t.Errorf("top level (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]Index{child1, child2}, tr.Children(root)); diff != "" {
		t.Errorf("children of root (-want +got):\n%s", diff)
	}
	if got := tr.Parent(child1); got != root {
		t.Errorf("Parent(child1) = %v; want %v", got, root)
	}
	if got := tr.Parent(sibling); got != NIL {
		t.Errorf("Parent(sibling) = %v; want NIL", got)
	}
}

func TestPeekUpAndGrandparent(t *testing.T) {
	tr := New[string]()
	a := tr.Append("a")
	tr.Push()
	b := tr.Append("b")
	tr.Push()
	tr.Append("c")

	if got := tr.PeekUp(); got != b {
		t.Errorf("PeekUp() = %v; want %v", got, b)
	}
	if got := tr.PeekGrandparent(); got != a {
		t.Errorf("PeekGrandparent() = %v; want %v", got, a)
	}
	if got := tr.Depth(); got != 2 {
		t.Errorf("Depth() = %d; want 2", got)
	}
}

func TestPopAtRootPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Pop at root depth did not panic")
		}
	}()
	New[string]().Pop()
}

func TestPushWithoutCurPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Push with no current node did not panic")
		}
	}()
	New[string]().Push()
}

func TestSetItem(t *testing.T) {
	tr := New[int]()
	idx := tr.Append(1)
	tr.SetItem(idx, 42)
	if got := tr.Item(idx); got != 42 {
		t.Errorf("Item(idx) = %d; want 42", got)
	}
	*tr.ItemPtr(idx) = 7
	if got := tr.Item(idx); got != 7 {
		t.Errorf("Item(idx) after ItemPtr mutation = %d; want 7", got)
	}
}
