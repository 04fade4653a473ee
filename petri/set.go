// Copyright 2026 The JazzPetri Authors
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

package petri

import (
	"strconv"
	"strings"
)

// Set is a subset of a dense id range [0, n), used for place sets and
// transition sets alike. The zero-length Set is the empty set of an empty
// range. Operations between sets assume equal lengths.
type Set []bool

// NewSet returns the empty subset of [0, n).
func NewSet(n int) Set {
	return make(Set, n)
}

// SetOf returns the subset of [0, n) containing ids.
func SetOf(n int, ids ...int) Set {
	s := NewSet(n)
	for _, id := range ids {
		s[id] = true
	}
	return s
}

// FullSet returns [0, n).
func FullSet(n int) Set {
	s := NewSet(n)
	for i := range s {
		s[i] = true
	}
	return s
}

// Has reports whether id is in the set. Out-of-range ids are not members.
func (s Set) Has(id int) bool {
	return id >= 0 && id < len(s) && s[id]
}

// Add inserts id.
func (s Set) Add(id int) { s[id] = true }

// Remove deletes id.
func (s Set) Remove(id int) { s[id] = false }

// Len returns the number of members.
func (s Set) Len() int {
	n := 0
	for _, in := range s {
		if in {
			n++
		}
	}
	return n
}

// IsEmpty reports whether the set has no members.
func (s Set) IsEmpty() bool {
	for _, in := range s {
		if in {
			return false
		}
	}
	return true
}

// IDs returns the members in ascending order.
func (s Set) IDs() []int {
	ids := make([]int, 0, len(s))
	for i, in := range s {
		if in {
			ids = append(ids, i)
		}
	}
	return ids
}

// Clone returns a copy of the set.
func (s Set) Clone() Set {
	c := make(Set, len(s))
	copy(c, s)
	return c
}

// Union returns s ∪ o.
func (s Set) Union(o Set) Set {
	r := s.Clone()
	for i := range r {
		r[i] = r[i] || o.Has(i)
	}
	return r
}

// Intersect returns s ∩ o.
func (s Set) Intersect(o Set) Set {
	r := s.Clone()
	for i := range r {
		r[i] = r[i] && o.Has(i)
	}
	return r
}

// Minus returns s \ o.
func (s Set) Minus(o Set) Set {
	r := s.Clone()
	for i := range r {
		r[i] = r[i] && !o.Has(i)
	}
	return r
}

// Equal reports whether both sets have the same members.
func (s Set) Equal(o Set) bool {
	return s.SubsetOf(o) && o.SubsetOf(s)
}

// SubsetOf reports whether every member of s is in o.
func (s Set) SubsetOf(o Set) bool {
	for i, in := range s {
		if in && !o.Has(i) {
			return false
		}
	}
	return true
}

// String renders the set as {0,2,5}.
func (s Set) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for k, id := range s.IDs() {
		if k > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(id))
	}
	sb.WriteByte('}')
	return sb.String()
}
