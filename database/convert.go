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

package database

import (
	"github.com/blinklabs-io/parlmembers/database/models"
	"github.com/blinklabs-io/parlmembers/extract"
	"github.com/blinklabs-io/parlmembers/relational"
	"github.com/blinklabs-io/parlmembers/review"
)

// EntitiesFromResult converts built tables into their table models
func EntitiesFromResult(res *relational.Result) *models.Entities {
	ret := &models.Entities{
		People:          make([]models.Person, 0, len(res.People)),
		Representations: make([]models.Representation, 0, len(res.Representations)),
		Characteristics: make([]models.RepresentationCharacteristic, 0, len(res.Characteristics)),
		Statuses:        make([]models.RepresentationStatus, 0, len(res.Statuses)),
		Constituencies:  make([]models.Constituency, 0, len(res.Constituencies)),
	}
	for _, p := range res.People {
		ret.People = append(ret.People, models.Person{
			ID:           p.ID,
			IDParliament: p.IDParliament,
			Name:         p.Name,
			ShortName:    p.ShortName,
			Gender:       p.Gender,
			StartDate:    p.StartDate,
			EndDate:      p.EndDate,
		})
	}
	for _, r := range res.Representations {
		ret.Representations = append(ret.Representations, models.Representation{
			ID:                       r.ID,
			IDParliament:             r.IDParliament,
			PersonID:                 r.PersonID,
			House:                    r.House,
			Type:                     r.Type,
			ConstituencyID:           r.Constituency,
			ConstituencyIDParliament: r.ConstituencyIDParliament,
			StartDate:                r.StartDate,
			EndDate:                  r.EndDate,
		})
	}
	for _, c := range res.Characteristics {
		ret.Characteristics = append(ret.Characteristics, models.RepresentationCharacteristic{
			ID:               c.ID,
			RepresentationID: c.RepresentationID,
			Party:            c.Party,
			StartDate:        c.StartDate,
			EndDate:          c.EndDate,
		})
	}
	for _, s := range res.Statuses {
		ret.Statuses = append(ret.Statuses, models.RepresentationStatus{
			ID:               s.ID,
			RepresentationID: s.RepresentationID,
			Status:           s.Status,
			Reason:           s.Reason,
			StartDate:        s.StartDate,
		})
	}
	for _, c := range res.Constituencies {
		ret.Constituencies = append(ret.Constituencies, models.Constituency{
			ID:           c.ID,
			IDParliament: c.IDParliament,
			Name:         c.Name,
		})
	}
	return ret
}

// PeopleFromModels converts stored person rows back for comparison
func PeopleFromModels(rows []models.Person) []relational.Person {
	ret := make([]relational.Person, 0, len(rows))
	for _, p := range rows {
		ret = append(ret, relational.Person{
			ID:           p.ID,
			IDParliament: p.IDParliament,
			Name:         p.Name,
			ShortName:    p.ShortName,
			Gender:       p.Gender,
			StartDate:    p.StartDate,
			EndDate:      p.EndDate,
		})
	}
	return ret
}

// ConstituenciesFromModels converts stored constituency rows back for
// comparison
func ConstituenciesFromModels(rows []models.Constituency) []relational.Constituency {
	ret := make([]relational.Constituency, 0, len(rows))
	for _, c := range rows {
		ret = append(ret, relational.Constituency{
			ID:           c.ID,
			IDParliament: c.IDParliament,
			Name:         c.Name,
		})
	}
	return ret
}

func ReviewTaskModel(task *review.Task) *models.ReviewTask {
	ret := &models.ReviewTask{
		ID:          task.ID,
		RunID:       task.RunID,
		Type:        task.Type,
		Description: task.Description,
		CreatedAt:   task.CreatedAt,
	}
	for _, s := range task.Statuses {
		ret.Statuses = append(ret.Statuses, models.ReviewTaskStatus{
			ID:     s.ID,
			TaskID: s.TaskID,
			Status: s.Status,
			User:   s.User,
			At:     s.At,
		})
	}
	for _, a := range task.Allocations {
		ret.Allocations = append(ret.Allocations, models.ReviewTaskAllocation{
			ID:     a.ID,
			TaskID: a.TaskID,
			Role:   a.Role,
			User:   a.User,
		})
	}
	for _, item := range task.Items {
		ret.Items = append(ret.Items, models.ReviewItem{
			ID:      item.ID,
			TaskID:  item.TaskID,
			Entity:  item.Entity,
			Key:     item.Key,
			Status:  string(item.Status),
			Side:    string(item.Side),
			Payload: string(item.Payload),
		})
	}
	return ret
}

func StateOfThePartyModels(rows []extract.StateOfTheParty) []models.StateOfTheParty {
	ret := make([]models.StateOfTheParty, 0, len(rows))
	for _, r := range rows {
		ret = append(ret, models.StateOfTheParty{
			Date:                  r.Date,
			House:                 int(r.House),
			PartyID:               r.PartyID,
			PartyName:             r.PartyName,
			PartyAbbreviation:     r.PartyAbbreviation,
			BackgroundColour:      r.BackgroundColour,
			ForegroundColour:      r.ForegroundColour,
			GovernmentType:        r.GovernmentType,
			Male:                  r.Male,
			Female:                r.Female,
			NonBinary:             r.NonBinary,
			Total:                 r.Total,
			IsLordsMainParty:      r.IsLordsMainParty,
			IsLordsSpiritualParty: r.IsLordsSpiritualParty,
			IsIndependentParty:    r.IsIndependentParty,
		})
	}
	return ret
}
