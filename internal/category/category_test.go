package category_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/spendboard/internal/category"
)

func TestConfig_Sort(t *testing.T) {
	c := category.Default()

	got := []string{"Zoo", "Groceries", "Others", "Books", "Rent", "Water"}
	c.Sort(got)

	assert.Equal(t, []string{"Rent", "Water", "Groceries", "Others", "Books", "Zoo"}, got)
}

func TestConfig_CustomOrder(t *testing.T) {
	c := category.New([]string{"Travel", "Rent"}, []string{"Bonus"})

	got := []string{"Rent", "Groceries", "Travel"}
	c.Sort(got)

	assert.Equal(t, []string{"Travel", "Rent", "Groceries"}, got)
	assert.True(t, c.IsIncome("Bonus"))
	assert.False(t, c.IsIncome("Salary"))
}

func TestConfig_IsIncome(t *testing.T) {
	c := category.Default()

	assert.True(t, c.IsIncome("Salary"))
	assert.True(t, c.IsIncome("OtherIncomes"))
	assert.False(t, c.IsIncome("Refund"))
	assert.False(t, c.IsIncome("salary"))
}

func TestSortBy(t *testing.T) {
	type row struct{ name string }

	rows := []row{{"Shopping"}, {"Unknown"}, {"Rent"}}
	category.SortBy(category.Default(), rows, func(r row) string { return r.name })

	assert.Equal(t, []row{{"Rent"}, {"Shopping"}, {"Unknown"}}, rows)
}

func TestConfig_UnlistedCategoriesIgnoreCase(t *testing.T) {
	c := category.Default()

	got := []string{"Zoo", "apple", "Rent", "banana", "Éclair", "Books"}
	c.Sort(got)

	assert.Equal(t, []string{"Rent", "apple", "banana", "Books", "Éclair", "Zoo"}, got)
	assert.Negative(t, c.Compare("apple", "Zoo"))
}
