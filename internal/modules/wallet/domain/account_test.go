package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func Test_Debit_Fails_When_Balance_Cannot_Cover_Amount(t *testing.T) {
	// Arrange
	account := Account{ID: uuid.New(), Balance: 99}

	// Act
	err := account.Debit(100)

	// Assert
	require.ErrorIs(t, err, ErrInsufficientFunds)
	require.Equal(t, int64(99), account.Balance)
}

func Test_Debit_Allows_Draining_The_Full_Balance(t *testing.T) {
	// Arrange
	account := Account{ID: uuid.New(), Balance: 100}

	// Act
	err := account.Debit(100)

	// Assert
	require.NoError(t, err)
	require.Equal(t, int64(0), account.Balance)
}

func Test_Credit_Increases_Balance(t *testing.T) {
	// Arrange
	account := Account{ID: uuid.New(), Balance: 40}

	// Act
	account.Credit(60)

	// Assert
	require.Equal(t, int64(100), account.Balance)
}
