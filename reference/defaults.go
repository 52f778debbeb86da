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

package reference

const (
	DefaultSplitCutoff              = "2015-05-07"
	DefaultPeerageConstituencyMaxID = 10
)

// DefaultSpec returns the built-in reference data. The returned value is a
// fresh copy that callers may modify before passing to New.
func DefaultSpec() Spec {
	return Spec{
		PreElectionPeriodToElectionDate: map[string]string{
			"2015-03-30": "2015-05-07",
			"2017-05-03": "2017-06-08",
			"2019-11-06": "2019-12-12",
			"2024-05-30": "2024-07-04",
		},
		ElectionDates: []string{
			"1918-12-14",
			"1922-11-15",
			"1923-12-06",
			"1924-10-29",
			"1929-05-30",
			"1931-10-27",
			"1935-11-14",
			"1945-07-05",
			"1950-02-23",
			"1951-10-25",
			"1955-05-26",
			"1959-10-08",
			"1964-10-15",
			"1966-03-31",
			"1970-06-18",
			"1974-02-28",
			"1974-10-10",
			"1979-05-03",
			"1983-06-09",
			"1987-06-11",
			"1992-04-09",
			"1997-05-01",
			"2001-06-07",
			"2005-05-05",
			"2010-05-06",
			"2015-05-07",
			"2017-06-08",
			"2019-12-12",
			"2024-07-04",
		},
		PeerageTypeRenamings: map[string]string{
			"Excepted Hereditary": "Hereditary",
			"Life peer":           "Life",
			"Bishops":             "Bishop",
		},
		SplitCutoff:              DefaultSplitCutoff,
		PeerageConstituencyMaxID: DefaultPeerageConstituencyMaxID,
	}
}
