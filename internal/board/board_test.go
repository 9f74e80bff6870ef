package board

import (
	"testing"

	"github.com/meur/tierzen/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func items(ids ...string) []models.Item {
	out := make([]models.Item, len(ids))
	for i, id := range ids {
		out[i] = models.Item{ID: id, Name: id}
	}
	return out
}

func ids(seq []models.Item) []string {
	out := make([]string, len(seq))
	for i, it := range seq {
		out[i] = it.ID
	}
	return out
}

func sample() State {
	t1 := models.NewTier("t1", "S", "#ff7f7f")
	t1.Items = items("A", "B")
	t2 := models.NewTier("t2", "A", "#ffbf7f")
	t2.Items = items("C")
	return State{Tiers: []models.Tier{t1, t2}, Unranked: items("X", "Y")}
}

func TestRemoveByID(t *testing.T) {
	seq := items("A", "B", "C")

	out, removed, ok := RemoveByID(seq, "B")
	require.True(t, ok)
	assert.Equal(t, "B", removed.ID)
	assert.Equal(t, []string{"A", "C"}, ids(out))
	assert.Equal(t, []string{"A", "B", "C"}, ids(seq), "input must not be modified")
}

func TestRemoveByID_MissingReturnsSameSequence(t *testing.T) {
	seq := items("A")

	out, _, ok := RemoveByID(seq, "Z")
	assert.False(t, ok)
	assert.Same(t, &seq[0], &out[0])
}

func TestInsertAt_Clamps(t *testing.T) {
	seq := items("A", "B")
	z := models.Item{ID: "Z"}

	assert.Equal(t, []string{"Z", "A", "B"}, ids(InsertAt(seq, -4, z)))
	assert.Equal(t, []string{"A", "Z", "B"}, ids(InsertAt(seq, 1, z)))
	assert.Equal(t, []string{"A", "B", "Z"}, ids(InsertAt(seq, 2, z)))
	assert.Equal(t, []string{"A", "B", "Z"}, ids(InsertAt(seq, 99, z)))
	assert.Equal(t, []string{"Z"}, ids(InsertAt(nil, 3, z)))
	assert.Equal(t, []string{"A", "B"}, ids(seq))
}

func TestSequenceAndWithSequence(t *testing.T) {
	s := sample()

	seq, ok := s.Sequence("t2")
	require.True(t, ok)
	assert.Equal(t, []string{"C"}, ids(seq))

	_, ok = s.Sequence("nope")
	assert.False(t, ok)

	next := s.WithSequence("t2", items("C", "D"))
	assert.Equal(t, []string{"C"}, ids(s.Tiers[1].Items), "original state must be untouched")
	assert.Equal(t, []string{"C", "D"}, ids(next.Tiers[1].Items))
	assert.Same(t, &s.Tiers[0].Items[0], &next.Tiers[0].Items[0], "untouched tier keeps its backing array")

	next = s.WithSequence(models.Unranked, nil)
	assert.Empty(t, next.Unranked)
	assert.Len(t, s.Unranked, 2)
}

func TestLocate(t *testing.T) {
	s := sample()

	c, idx, it, ok := s.Locate("B")
	require.True(t, ok)
	assert.Equal(t, models.CollectionID("t1"), c)
	assert.Equal(t, 1, idx)
	assert.Equal(t, "B", it.ID)

	c, idx, _, ok = s.Locate("Y")
	require.True(t, ok)
	assert.Equal(t, models.Unranked, c)
	assert.Equal(t, 1, idx)

	_, _, _, ok = s.Locate("nope")
	assert.False(t, ok)
}

func TestCheckOwnership(t *testing.T) {
	s := sample()
	require.NoError(t, s.CheckOwnership())

	dup := s.WithSequence(models.Unranked, items("X", "A"))
	assert.Error(t, dup.CheckOwnership())

	bad := State{Tiers: []models.Tier{models.NewTier("unranked", "U", "#fff")}}
	assert.Error(t, bad.CheckOwnership())
}

func TestAddTier(t *testing.T) {
	s := sample()

	next, tier := s.AddTier("", "")
	assert.Len(t, s.Tiers, 2)
	require.Len(t, next.Tiers, 3)
	assert.Equal(t, "New Tier 3", tier.Name)
	assert.Equal(t, "#cccccc", tier.Color)
	assert.Equal(t, models.TextBlack, tier.TextColor)
	assert.Equal(t, tier.ID, next.Tiers[2].ID)
}

func TestUpdateTier_RecomputesTextColor(t *testing.T) {
	s := sample()
	dark := "#000000"
	blank := "   "

	next, err := s.UpdateTier("t1", models.TierPatch{Color: &dark, Name: &blank})
	require.NoError(t, err)
	assert.Equal(t, "#000000", next.Tiers[0].Color)
	assert.Equal(t, models.TextWhite, next.Tiers[0].TextColor)
	assert.Equal(t, "S", next.Tiers[0].Name, "blank name keeps the old one")
	assert.Equal(t, "#ff7f7f", s.Tiers[0].Color)

	name := "  Top "
	next, err = next.UpdateTier("t1", models.TierPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Top", next.Tiers[0].Name)
	assert.Equal(t, models.TextWhite, next.Tiers[0].TextColor)

	_, err = s.UpdateTier("nope", models.TierPatch{})
	assert.ErrorIs(t, err, ErrTierNotFound)
}

func TestDeleteTier_MovesItemsToUnranked(t *testing.T) {
	s := sample()
	s, err := s.SetItemError("A", true)
	require.NoError(t, err)
	before := s.Count()

	next, err := s.DeleteTier("t1")
	require.NoError(t, err)
	assert.Equal(t, before, next.Count())
	assert.Equal(t, []string{"X", "Y", "A", "B"}, ids(next.Unranked))
	assert.False(t, next.Unranked[2].HasError)
	require.Len(t, next.Tiers, 1)
	assert.Equal(t, "t2", next.Tiers[0].ID)
	require.NoError(t, next.CheckOwnership())

	_, err = s.DeleteTier("t1-missing")
	assert.ErrorIs(t, err, ErrTierNotFound)
}

func TestMoveTier(t *testing.T) {
	s := sample()
	s, third := s.AddTier("C", "#7fff7f")

	next, err := s.MoveTier(third.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, third.ID, next.Tiers[0].ID)
	assert.Equal(t, "t1", next.Tiers[1].ID)

	next, err = next.MoveTier(third.ID, 50)
	require.NoError(t, err)
	assert.Equal(t, third.ID, next.Tiers[2].ID)

	_, err = s.MoveTier("nope", 0)
	assert.ErrorIs(t, err, ErrTierNotFound)
}

func TestItemCRUD(t *testing.T) {
	s := sample()

	s, added := s.AddItem(models.ItemInput{Name: " New ", ImageURL: "http://img"})
	assert.Equal(t, "New", added.Name)
	assert.Equal(t, added.ID, s.Unranked[len(s.Unranked)-1].ID)

	s, err := s.SetItemError("C", true)
	require.NoError(t, err)
	_, _, c, _ := s.Locate("C")
	assert.True(t, c.HasError)

	s, updated, err := s.UpdateItem("C", models.ItemInput{Name: "Cee", ImageURL: "http://c"})
	require.NoError(t, err)
	assert.False(t, updated.HasError)
	assert.Equal(t, "Cee", s.Tiers[1].Items[0].Name)

	s, err = s.DeleteItem("C")
	require.NoError(t, err)
	_, _, _, ok := s.Locate("C")
	assert.False(t, ok)

	_, err = s.DeleteItem("C")
	assert.ErrorIs(t, err, ErrItemNotFound)
	_, _, err = s.UpdateItem("C", models.ItemInput{})
	assert.ErrorIs(t, err, ErrItemNotFound)
	_, err = s.SetItemError("C", true)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestDefault(t *testing.T) {
	s := Default()
	require.Len(t, s.Tiers, 3)
	assert.Equal(t, "S Tier", s.Tiers[0].Name)
	assert.Equal(t, []string{"item-alpha-initial", "item-beta-initial"}, ids(s.Unranked))
	require.NoError(t, s.CheckOwnership())
}
