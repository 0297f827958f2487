package repo

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

func dupErr(msg string) error {
	return mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000, Message: msg}}}
}

func TestDupConflict(t *testing.T) {
	err := dupConflict(dupErr(`E11000 duplicate key error collection: account_db.users index: uniq_email dup key: { email: "a@x.com" }`))
	require.ErrorIs(t, err, ErrConflictEmail)

	err = dupConflict(dupErr(`E11000 duplicate key error collection: account_db.users index: uniq_mobile dup key: { mobile: "5551234567" }`))
	require.ErrorIs(t, err, ErrConflictMobile)
}

func TestDupConflictPassesThroughOtherErrors(t *testing.T) {
	require.Nil(t, dupConflict(errors.New("connection reset")))
	require.Nil(t, dupConflict(nil))
	require.Nil(t, dupConflict(mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 121, Message: "validation"}}}))
}
