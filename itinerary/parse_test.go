package itinerary

import (
	"errors"
	"testing"

	"globetrail/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const threePlaces = `{"places":[
 {"day":"Day 2","name":"Louvre","visitTime":"10:00 AM","entryFee":"$22","visitOrder":1},
 {"day":"Day 1","name":"Notre-Dame","visitTime":"2:00 PM","entryFee":"Free","visitOrder":2},
 {"day":"Day 1","name":"Eiffel Tower","visitTime":"9:00 AM","entryFee":"$30","visitOrder":1}
]}`

func TestParsePlan_SortsByDayThenOrder(t *testing.T) {
	plan, err := ParsePlan(threePlaces, 2)
	require.NoError(t, err)

	names := make([]string, 0, len(plan.Places))
	for _, p := range plan.Places {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Eiffel Tower", "Notre-Dame", "Louvre"}, names)
}

func TestParsePlan_MissingOrderSortsLast(t *testing.T) {
	const mixed = `{"places":[
 {"day":"Day 1","name":"Marais","visitOrder":0},
 {"day":"Day 1","name":"Orsay","visitOrder":3},
 {"day":"Day 1","name":"Pantheon"},
 {"day":"Day 2","name":"Versailles","visitOrder":1},
 {"day":"Day 1","name":"Sainte-Chapelle","visitOrder":1}
]}`
	plan, err := ParsePlan(mixed, 2)
	require.NoError(t, err)

	names := make([]string, 0, len(plan.Places))
	for _, p := range plan.Places {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Sainte-Chapelle", "Orsay", "Marais", "Pantheon", "Versailles"}, names)
}

func TestParsePlan_StripsFences(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"json fence", "```json\n" + threePlaces + "\n```"},
		{"bare fence", "```\n" + threePlaces + "\n```"},
		{"leading prose", "Here is your plan:\n" + threePlaces + "\nEnjoy!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := ParsePlan(tt.text, 2)
			require.NoError(t, err)
			assert.Len(t, plan.Places, 3)
		})
	}
}

func TestParsePlan_Rejects(t *testing.T) {
	tests := []struct {
		name string
		text string
		days int
		want error
	}{
		{"empty text", "   ", 2, apperr.ErrEmptyItinerary},
		{"not json", "I cannot help with that.", 2, apperr.ErrMalformedResponse},
		{"no places", `{"places":[]}`, 2, apperr.ErrMalformedResponse},
		{"missing name", `{"places":[{"day":"Day 1","name":"  "}]}`, 2, apperr.ErrMalformedResponse},
		{"bad label", `{"places":[{"day":"First day","name":"Louvre"}]}`, 2, apperr.ErrMalformedResponse},
		{"day gap", `{"places":[{"day":"Day 1","name":"A"},{"day":"Day 3","name":"B"}]}`, 3, apperr.ErrMalformedResponse},
		{"too many days", `{"places":[{"day":"Day 1","name":"A"},{"day":"Day 2","name":"B"}]}`, 1, apperr.ErrMalformedResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePlan(tt.text, tt.days)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestParsePlan_NormalizesLabels(t *testing.T) {
	plan, err := ParsePlan(`{"places":[{"day":" Day  1 ","name":"Louvre","entryFee":17}]}`, 1)
	require.NoError(t, err)
	assert.Equal(t, "Day 1", plan.Places[0].Day)
	assert.Equal(t, FeeText("17"), plan.Places[0].EntryFee)
}
