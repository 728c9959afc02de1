package list

import (
	"net/url"
	"testing"
)

func TestParseQuery_Defaults(t *testing.T) {
	q, err := ParseQuery(url.Values{})
	if err != nil {
		t.Fatal(err)
	}
	if q.Page != 1 || q.PerPage != 20 {
		t.Errorf("defaults: %+v", q)
	}
}

func TestParseQuery_FiltersAndSearch(t *testing.T) {
	q, err := ParseQuery(url.Values{
		"search":   {"Acme"},
		"page":     {"3"},
		"f.status": {"overdue"},
		"f.type":   {"all"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if q.Search != "Acme" || q.Page != 3 {
		t.Errorf("parsed: %+v", q)
	}
	if q.Filters["status"] != "overdue" {
		t.Errorf("filters: %v", q.Filters)
	}
}

func TestParseQuery_IgnoresUnknownKeys(t *testing.T) {
	if _, err := ParseQuery(url.Values{"utm_source": {"mail"}}); err != nil {
		t.Errorf("unknown keys should be ignored: %v", err)
	}
}

func TestParams_BothSearchAndFilterPresent(t *testing.T) {
	q, _ := ParseQuery(url.Values{
		"search":   {"Acme"},
		"f.status": {"overdue"},
	})
	params := q.Params([]string{"status"}, nil)

	if params.Search != "Acme" {
		t.Errorf("search missing: %+v", params)
	}
	if params.Filters["status"] != "overdue" {
		t.Errorf("filter missing: %+v", params)
	}
}

func TestParams_AllSentinelExcluded(t *testing.T) {
	q, _ := ParseQuery(url.Values{"f.status": {"all"}})
	params := q.Params([]string{"status"}, nil)

	if _, ok := params.Filters["status"]; ok {
		t.Errorf(`"all" sentinel must be dropped from filters: %+v`, params.Filters)
	}
}

func TestParams_UnknownFiltersDropped(t *testing.T) {
	q, _ := ParseQuery(url.Values{"f.data": {"x"}})
	params := q.Params([]string{"status"}, nil)

	if params.Filters != nil {
		t.Errorf("filters outside the allowed set must be dropped: %+v", params.Filters)
	}
}

func TestParams_MatchFields(t *testing.T) {
	q, err := ParseQuery(url.Values{
		"m.name": {"Acm"},
		"m.city": {"San"},
	})
	if err != nil {
		t.Fatal(err)
	}
	params := q.Params(nil, []string{"name"})

	if params.Match["name"] != "Acm" {
		t.Errorf("match missing: %+v", params.Match)
	}
	if _, ok := params.Match["city"]; ok {
		t.Errorf("matches outside the matchable set must be dropped: %+v", params.Match)
	}

	empty, _ := ParseQuery(url.Values{"m.name": {""}})
	if p := empty.Params(nil, []string{"name"}); p.Match != nil {
		t.Errorf("empty match values must be dropped: %+v", p.Match)
	}
}

func TestTotalPages(t *testing.T) {
	cases := []struct{ total, perPage, want int }{
		{0, 20, 1},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{100, 20, 5},
	}
	for _, c := range cases {
		if got := TotalPages(c.total, c.perPage); got != c.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", c.total, c.perPage, got, c.want)
		}
	}
}

func TestClampPage(t *testing.T) {
	if ClampPage(0, 5) != 1 {
		t.Error("clamp below first page")
	}
	if ClampPage(9, 5) != 5 {
		t.Error("clamp above last page")
	}
	if ClampPage(3, 5) != 3 {
		t.Error("in-range page unchanged")
	}
}
