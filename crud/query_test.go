package crud

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func skillFilters() *FilterSet {
	return MustFilterSet(
		FilterSpec{FieldKey: "name", Label: "Name", Kind: FilterText},
		FilterSpec{FieldKey: "description", Label: "Description", Kind: FilterText},
	)
}

func TestParams_SkillsScenario(t *testing.T) {
	q := Query{
		Pagination: Pagination{Page: 0, PageSize: 10},
		Filters:    Values{"name": {"java"}},
	}
	assert.Equal(t,
		"page=1&pageSize=10&filterField=name&filterValue=java&filterOperator=contains",
		q.Params(skillFilters()).Encode())
}

func TestParams_PageIsOneBased(t *testing.T) {
	p := Query{Pagination: Pagination{Page: 3, PageSize: 20}}.Params(skillFilters())
	assert.Equal(t, []string{"4"}, p.Get("page"))
	assert.Equal(t, []string{"20"}, p.Get("pageSize"))
}

func TestParams_EmptyFiltersSendNothing(t *testing.T) {
	q := Query{
		Pagination: Pagination{PageSize: 10},
		Filters:    Values{"name": {""}, "description": {"   "}},
	}
	p := q.Params(skillFilters())
	assert.Empty(t, p.Get("filterField"))
	assert.Equal(t, Query{Pagination: Pagination{PageSize: 10}}.Params(skillFilters()), p)
}

func TestParams_Sort(t *testing.T) {
	q := Query{
		Pagination: Pagination{PageSize: 5},
		Sort:       SortState{{Field: "level", Direction: SortDesc}},
	}
	assert.Equal(t, "page=1&pageSize=5&sortField=level&sortOrder=desc", q.Params(skillFilters()).Encode())
}

func TestParams_SelectUsesEquals(t *testing.T) {
	fs := MustFilterSet(
		FilterSpec{FieldKey: "title", Kind: FilterText},
		FilterSpec{FieldKey: "section_id", Kind: FilterSelect, Options: &OptionsSource{Endpoint: "/api/sections"}},
	)
	q := Query{Pagination: Pagination{PageSize: 10}, Filters: Values{"section_id": {"4"}, "title": {"Go & more"}}}
	assert.Equal(t,
		"page=1&pageSize=10&filterField=title&filterValue=Go+%26+more&filterOperator=contains"+
			"&filterField=section_id&filterValue=4&filterOperator=equals",
		q.Params(fs).Encode())
}

func TestParams_MultiselectTriplePerValue(t *testing.T) {
	fs := MustFilterSet(FilterSpec{FieldKey: "roles", Kind: FilterMultiSelect, Options: &OptionsSource{Endpoint: "/api/roles"}})
	base := Query{Pagination: Pagination{PageSize: 10}, Filters: Values{"roles": {"1", "3"}}}

	or := base.Params(fs)
	assert.Equal(t, []string{"roles", "roles"}, or.Get("filterField"))
	assert.Equal(t, []string{"1", "3"}, or.Get("filterValue"))
	assert.Equal(t, []string{"equals", "equals"}, or.Get("filterOperator"))
	assert.Empty(t, or.Get("filterCondition"))

	base.Match = MatchAll
	and := base.Params(fs)
	assert.Equal(t, or, and[:len(or)], "triples are identical in both modes")
	assert.Equal(t, []string{"AND"}, and.Get("filterCondition"))
}

func TestSortState_Toggle(t *testing.T) {
	var s SortState
	s = s.Toggle("name")
	assert.Equal(t, SortState{{Field: "name", Direction: SortAsc}}, s)
	s = s.Toggle("name")
	assert.Equal(t, SortState{{Field: "name", Direction: SortDesc}}, s)
	s = s.Toggle("name")
	assert.Empty(t, s)
	s = SortState{{Field: "name", Direction: SortDesc}}.Toggle("level")
	assert.Equal(t, SortState{{Field: "level", Direction: SortAsc}}, s)
}

func TestSkillTone(t *testing.T) {
	cases := map[int]string{100: "success", 90: "success", 89: "primary", 80: "primary", 70: "primary", 69: "info", 50: "info", 30: "warning", 29: "danger", 0: "danger"}
	for level, tone := range cases {
		assert.Equal(t, tone, SkillTone(level), "level %d", level)
	}
}
