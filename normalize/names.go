// Copyright 2026 Blink Labs Software
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

package normalize

import (
	"strings"
)

// honorifics are stripped from the front of display names. Peerage titles
// such as Lord or Baroness are kept as they identify the person.
var honorifics = map[string]struct{}{
	"mr":         {},
	"mrs":        {},
	"ms":         {},
	"miss":       {},
	"mx":         {},
	"dr":         {},
	"sir":        {},
	"dame":       {},
	"rt":         {},
	"hon":        {},
	"right":      {},
	"honourable": {},
	"prof":       {},
	"professor":  {},
	"rev":        {},
	"revd":       {},
	"reverend":   {},
	"canon":      {},
	"the":        {},
}

var peerageTitles = map[string]struct{}{
	"lord":        {},
	"lady":        {},
	"baroness":    {},
	"baron":       {},
	"viscount":    {},
	"viscountess": {},
	"earl":        {},
	"countess":    {},
	"marquess":    {},
	"marchioness": {},
	"duke":        {},
	"duchess":     {},
	"bishop":      {},
	"archbishop":  {},
}

// CleanName strips honorifics, commas and full stops from a display name
// and collapses whitespace
func CleanName(displayName string) string {
	s := strings.NewReplacer(",", "", ".", "").Replace(displayName)
	words := strings.Fields(s)
	for len(words) > 1 {
		if _, ok := honorifics[strings.ToLower(words[0])]; !ok {
			break
		}
		words = words[1:]
	}
	return strings.Join(words, " ")
}

// ShortName derives the short form of a cleaned name. For territorial
// peerage names ("Lord Smith of Finsbury") it is the name part, or the
// place when there is no name part ("Lord Bishop of London"). Otherwise it
// is the surname.
func ShortName(name string) string {
	if before, after, ok := strings.Cut(name, " of "); ok {
		words := strings.Fields(before)
		for len(words) > 0 {
			lw := strings.ToLower(words[0])
			_, isPeerage := peerageTitles[lw]
			_, isHonorific := honorifics[lw]
			if !isPeerage && !isHonorific {
				break
			}
			words = words[1:]
		}
		if len(words) > 0 {
			return strings.Join(words, " ")
		}
		return strings.TrimSpace(after)
	}
	words := strings.Fields(name)
	if len(words) == 0 {
		return ""
	}
	return words[len(words)-1]
}
