package gormrepo_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/data/gormdb/gormdbtest"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/data/gormrepo"
	"github.com/epscavalcante/codeflix-catalog-admin-api-sub001/domain/search"
)

var sorting = gormrepo.Sorting{
	Table:  "genres",
	Fields: []string{"name", "created_at"},
	Overrides: map[string]map[string]gormrepo.FieldOrder{
		"mysql": {"name": gormrepo.BinaryOrder},
	},
}

func TestSorting_Clause(t *testing.T) {
	assert.Equal(t, "genres.created_at desc", sorting.Clause("sqlite", "", ""))
	assert.Equal(t, "genres.created_at desc", sorting.Clause("sqlite", "description", search.Asc))
	assert.Equal(t, "genres.name asc", sorting.Clause("sqlite", "name", search.Asc))
	assert.Equal(t, "genres.name desc", sorting.Clause("sqlite", "name", ""))
	assert.Equal(t, "binary genres.name asc", sorting.Clause("mysql", "name", search.Asc))
	assert.Equal(t, "genres.created_at asc", sorting.Clause("mysql", "created_at", search.Asc))
}

func TestReorderByIDs(t *testing.T) {
	rows := []string{"a", "b", "c"}
	out := gormrepo.ReorderByIDs(rows, []string{"c", "x", "a"}, func(s string) string { return s })
	assert.Equal(t, []string{"c", "a"}, out)
}

type genreRow struct {
	ID        string
	Name      string
	IsActive  bool
	CreatedAt time.Time
}

func (genreRow) TableName() string { return "genres" }

var categoryGenre = gormrepo.Link{Table: "category_genre", OwnerCol: "genre_id", RelatedCol: "category_id"}

func TestDistinctIDsOverJoin(t *testing.T) {
	db := gormdbtest.New(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// g1..g4，每个 genre 关联两个分类，连接后行数翻倍
	for i := 1; i <= 4; i++ {
		id := fmt.Sprintf("g%d", i)
		require.NoError(t, db.Create(&genreRow{ID: id, Name: fmt.Sprintf("genre %d", i), IsActive: true,
			CreatedAt: base.Add(time.Duration(i) * time.Minute)}).Error)
		require.NoError(t, categoryGenre.Replace(db, id, []string{"c1", "c2"}))
	}
	require.NoError(t, categoryGenre.Replace(db, "g4", []string{"c3"}))

	q := categoryGenre.Join(db.Model(&genreRow{}), "genres.id", []string{"c1", "c2"})
	order := sorting.Clause(db.Dialector.Name(), "name", search.Asc)

	ids, total, err := gormrepo.DistinctIDs(q, "genres.id", order, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []string{"g3"}, ids)

	links, err := categoryGenre.Load(db, []string{"g1", "g4"})
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2"}, links["g1"])
	assert.Equal(t, []string{"c3"}, links["g4"])
}

func TestPaginate(t *testing.T) {
	db := gormdbtest.New(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= 3; i++ {
		require.NoError(t, db.Create(&genreRow{ID: fmt.Sprintf("g%d", i), Name: fmt.Sprintf("n%d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute)}).Error)
	}

	rows, total, err := gormrepo.Paginate[genreRow](db.Model(&genreRow{}), sorting.Clause("sqlite", "", ""), 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, rows, 1)
	assert.Equal(t, "g1", rows[0].ID)

	rows, total, err = gormrepo.Paginate[genreRow](db.Model(&genreRow{}).Where("name = ?", "none"), "genres.created_at desc", 0, 2)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, rows)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "a!_c", gormrepo.EscapeLike("a_c"))
	assert.Equal(t, "100!% real", gormrepo.EscapeLike("100% real"))
	assert.Equal(t, "wow!!", gormrepo.EscapeLike("wow!"))
	assert.Equal(t, `back\slash`, gormrepo.EscapeLike(`back\slash`))
}

func TestContainsMatchesLiterally(t *testing.T) {
	db := gormdbtest.New(t)
	for i, name := range []string{"abc", "a_c", "100% real", "Wow!", "ABC"} {
		require.NoError(t, db.Create(&genreRow{ID: fmt.Sprintf("g%d", i), Name: name}).Error)
	}

	cases := map[string][]string{
		"a_c":  {"a_c"},
		"%":    {"100% real"},
		"_":    {"a_c"},
		"!":    {"Wow!"},
		"abc":  {"abc", "ABC"},
		"% re": {"100% real"},
	}
	for filter, want := range cases {
		var names []string
		require.NoError(t, gormrepo.Contains(db.Model(&genreRow{}), "genres.name", filter).Order("name").Pluck("name", &names).Error)
		assert.ElementsMatch(t, want, names, "filter %q", filter)
	}
}
