package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fractalreg/internal/grant"
	"github.com/roach88/fractalreg/internal/testutil"
)

func TestFindGrants_RequiresOwnerOrGrantee(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f *fixture) {
		ctx := context.Background()
		f.insert(t, testutil.Alice, testutil.Bob, "A2", nil)

		_, err := f.reg.FindGrants(ctx, Query{DataID: testutil.Ptr("A2")})
		require.Error(t, err)
		assert.True(t, IsInvalidQuery(err))
		assert.Contains(t, err.Error(), "Required argument: `owner` and/or `grantee`")

		_, err = f.reg.FindGrants(ctx, Query{})
		assert.True(t, IsInvalidQuery(err))

		assert.Len(t, f.find(t, Query{Owner: testutil.Ptr(testutil.Alice)}), 1)
		assert.Len(t, f.find(t, Query{Grantee: testutil.Ptr(testutil.Bob)}), 1)
	})
}

func TestFindGrants_Intersection(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f *fixture) {
		owner := testutil.Alice
		f.insert(t, owner, testutil.Bob, "A1", nil)
		f.insert(t, owner, testutil.Bob, "A2", nil)
		f.insert(t, owner, testutil.Charlie, "A2", nil)

		all := f.find(t, Query{Owner: &owner})
		assert.Len(t, all, 3)

		bobs := f.find(t, Query{Grantee: testutil.Ptr(testutil.Bob)})
		assert.Equal(t, []string{"A1", "A2"}, dataIDs(bobs))

		a2 := f.find(t, Query{Owner: &owner, DataID: testutil.Ptr("A2")})
		require.Len(t, a2, 2)
		assert.ElementsMatch(t,
			[]grant.PublicKey{testutil.Bob, testutil.Charlie},
			[]grant.PublicKey{a2[0].Grantee, a2[1].Grantee})

		exact := f.find(t, Query{Owner: &owner, Grantee: testutil.Ptr(testutil.Charlie), DataID: testutil.Ptr("A2")})
		require.Len(t, exact, 1)
		assert.Equal(t, grant.Grant{Owner: owner, Grantee: testutil.Charlie, DataID: "A2"}, exact[0])
	})
}

func TestFindGrants_NoMatchIsEmpty(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f *fixture) {
		f.insert(t, testutil.Alice, testutil.Bob, "A1", nil)

		got := f.find(t, Query{Owner: testutil.Ptr(testutil.Mallory)})
		assert.NotNil(t, got)
		assert.Empty(t, got)

		got = f.find(t, Query{Grantee: testutil.Ptr(testutil.Bob), DataID: testutil.Ptr("nope")})
		assert.Empty(t, got)
	})
}

func TestFindGrants_OwnersAreSeparate(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f *fixture) {
		f.insert(t, testutil.Alice, testutil.Bob, "A1", nil)
		f.insert(t, testutil.Mallory, testutil.Bob, "A1", nil)

		assert.Len(t, f.find(t, Query{Owner: testutil.Ptr(testutil.Alice)}), 1)
		assert.Len(t, f.find(t, Query{Grantee: testutil.Ptr(testutil.Bob)}), 2)
		assert.Len(t, f.find(t, Query{Owner: testutil.Ptr(testutil.Mallory), Grantee: testutil.Ptr(testutil.Bob)}), 1)
	})
}

func TestFindGrants_FollowsLeadingListOrder(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f *fixture) {
		for _, id := range []string{"z", "a", "m"} {
			f.insert(t, testutil.Alice, testutil.Bob, id, nil)
		}

		got := f.find(t, Query{Owner: testutil.Ptr(testutil.Alice), Grantee: testutil.Ptr(testutil.Bob)})
		assert.Equal(t, []string{"z", "a", "m"}, dataIDs(got))
	})
}

func TestGrantsFor(t *testing.T) {
	forEachBackend(t, func(t *testing.T, f *fixture) {
		ctx := context.Background()
		f.insert(t, testutil.Alice, testutil.Bob, "A1", nil)
		f.insert(t, testutil.Mallory, testutil.Bob, "A1", testutil.Ptr(uint64(9)))
		f.insert(t, testutil.Alice, testutil.Bob, "A2", nil)
		f.insert(t, testutil.Alice, testutil.Charlie, "A1", nil)

		got, err := f.reg.GrantsFor(ctx, testutil.Bob, "A1")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, testutil.Alice, got[0].Owner)
		assert.Equal(t, testutil.Mallory, got[1].Owner)
		assert.Equal(t, uint64(9), got[1].LockedUntil)
	})
}
