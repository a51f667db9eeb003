package partner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCustomer(t *testing.T) {
	t.Run("creates customer successfully", func(t *testing.T) {
		customer, err := NewCustomer("CUST001", "Bloemenhandel Van Dijk BV")

		require.NoError(t, err)
		assert.NotNil(t, customer)
		assert.Equal(t, "CUST001", customer.Code)
		assert.Equal(t, "Bloemenhandel Van Dijk BV", customer.Name)
		assert.Equal(t, CustomerStatusActive, customer.Status)
		assert.Len(t, customer.GetDomainEvents(), 1)
	})

	t.Run("converts code to uppercase", func(t *testing.T) {
		customer, err := NewCustomer("cust002", "Flower Importers LLC")

		require.NoError(t, err)
		assert.Equal(t, "CUST002", customer.Code)
	})

	t.Run("fails with empty code", func(t *testing.T) {
		customer, err := NewCustomer("", "Flower Importers LLC")

		assert.Error(t, err)
		assert.Nil(t, customer)
		assert.Contains(t, err.Error(), "cannot be empty")
	})

	t.Run("fails with invalid code characters", func(t *testing.T) {
		customer, err := NewCustomer("CUST@001", "Flower Importers LLC")

		assert.Error(t, err)
		assert.Nil(t, customer)
		assert.Contains(t, err.Error(), "can only contain")
	})

	t.Run("fails with empty name", func(t *testing.T) {
		customer, err := NewCustomer("CUST001", "")

		assert.Error(t, err)
		assert.Nil(t, customer)
	})
}

func TestCustomer_Update(t *testing.T) {
	customer, err := NewCustomer("CUST001", "Old Name")
	require.NoError(t, err)
	customer.ClearDomainEvents()

	t.Run("updates name", func(t *testing.T) {
		err := customer.Update("New Name BV")

		require.NoError(t, err)
		assert.Equal(t, "New Name BV", customer.Name)
		assert.Equal(t, 2, customer.Version)
		assert.Len(t, customer.GetDomainEvents(), 1)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		err := customer.Update("")

		assert.Error(t, err)
		assert.Equal(t, "New Name BV", customer.Name)
	})
}

func TestCustomer_SetContact(t *testing.T) {
	customer, err := NewCustomer("CUST001", "Flower Importers LLC")
	require.NoError(t, err)

	t.Run("sets valid contact", func(t *testing.T) {
		err := customer.SetContact("Jan de Vries", "+31 20 123 4567", "jan@example.com")

		require.NoError(t, err)
		assert.Equal(t, "Jan de Vries", customer.ContactName)
		assert.Equal(t, "+31 20 123 4567", customer.Phone)
		assert.Equal(t, "jan@example.com", customer.Email)
	})

	t.Run("rejects invalid phone", func(t *testing.T) {
		err := customer.SetContact("Jan", "not-a-phone!", "")
		assert.Error(t, err)
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		err := customer.SetContact("Jan", "", "not-an-email")
		assert.Error(t, err)
	})
}

func TestCustomer_ActivateDeactivate(t *testing.T) {
	customer, err := NewCustomer("CUST001", "Flower Importers LLC")
	require.NoError(t, err)

	assert.True(t, customer.IsActive())

	err = customer.Activate()
	assert.Error(t, err, "activating an active customer should fail")

	require.NoError(t, customer.Deactivate())
	assert.False(t, customer.IsActive())
	assert.Equal(t, CustomerStatusInactive, customer.Status)

	err = customer.Deactivate()
	assert.Error(t, err, "deactivating an inactive customer should fail")

	require.NoError(t, customer.Activate())
	assert.True(t, customer.IsActive())
}
