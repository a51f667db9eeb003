package partner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFarm(t *testing.T) {
	t.Run("creates farm successfully", func(t *testing.T) {
		farm, err := NewFarm("FARM001", "Rosas del Valle S.A.")

		require.NoError(t, err)
		assert.NotNil(t, farm)
		assert.Equal(t, "FARM001", farm.Code)
		assert.Equal(t, "Rosas del Valle S.A.", farm.Name)
		assert.Equal(t, FarmStatusActive, farm.Status)
		assert.Len(t, farm.GetDomainEvents(), 1)
	})

	t.Run("converts code to uppercase", func(t *testing.T) {
		farm, err := NewFarm("farm002", "Altiplano Flowers")

		require.NoError(t, err)
		assert.Equal(t, "FARM002", farm.Code)
	})

	t.Run("fails with empty code", func(t *testing.T) {
		farm, err := NewFarm("", "Altiplano Flowers")

		assert.Error(t, err)
		assert.Nil(t, farm)
	})

	t.Run("fails with empty name", func(t *testing.T) {
		farm, err := NewFarm("FARM001", "")

		assert.Error(t, err)
		assert.Nil(t, farm)
	})
}

func TestFarm_SetBankDetails(t *testing.T) {
	farm, err := NewFarm("FARM001", "Rosas del Valle S.A.")
	require.NoError(t, err)

	t.Run("sets bank details", func(t *testing.T) {
		err := farm.SetBankDetails("Banco Pichincha", "2100045678")

		require.NoError(t, err)
		assert.Equal(t, "Banco Pichincha", farm.BankName)
		assert.Equal(t, "2100045678", farm.BankAccount)
	})

	t.Run("rejects overlong bank name", func(t *testing.T) {
		long := make([]byte, 201)
		for i := range long {
			long[i] = 'a'
		}
		err := farm.SetBankDetails(string(long), "")
		assert.Error(t, err)
	})
}

func TestFarm_ActivateDeactivate(t *testing.T) {
	farm, err := NewFarm("FARM001", "Rosas del Valle S.A.")
	require.NoError(t, err)

	assert.True(t, farm.IsActive())

	require.NoError(t, farm.Deactivate())
	assert.False(t, farm.IsActive())

	require.NoError(t, farm.Activate())
	assert.True(t, farm.IsActive())
}
