package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProductFilter_Query(t *testing.T) {
	q := ProductFilter{Text: "oud", Brand: "Lattafa", Page: 2}.Query()
	assert.Equal(t, "oud", q["q"])
	assert.Equal(t, "Lattafa", q["marca"])
	assert.Equal(t, 2, q["page"])
	assert.NotContains(t, q, "size")
	assert.Equal(t, "", q["tipo"])
}

func TestSearchRequest_QuerySort(t *testing.T) {
	req := SearchRequest{Sort: []SortField{{Field: "precio", Order: "DESC"}, {Field: " "}, {Field: "name", Order: "weird"}}}
	assert.Equal(t, "precio:desc,name:asc", req.Query()["sort"])

	assert.NotContains(t, SearchRequest{}.Query(), "sort")
}

func TestParseSort(t *testing.T) {
	got := ParseSort(" precio:desc , ,name, :asc")
	assert.Equal(t, []SortField{{Field: "precio", Order: "desc"}, {Field: "name", Order: ""}}, got)
	assert.Empty(t, ParseSort(""))
}

func TestUser_IsAdmin(t *testing.T) {
	assert.True(t, User{Role: RoleAdmin}.IsAdmin())
	assert.False(t, User{Role: RoleNormal}.IsAdmin())
}
