package mongo

import (
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lumen-ai/api-platform/internal/core/domain"
)

const (
	idxAccountEmail    = "uniq_account_email"
	idxAccountUsername = "uniq_account_username"
	idxKeyHash         = "uniq_api_key_hash"
	idxProviderUser    = "uniq_identity_provider_user"
	idxAccountProvider = "uniq_identity_account_provider"
)

var conflictByIndex = map[string]error{
	idxAccountEmail:    domain.ErrEmailTaken,
	idxAccountUsername: domain.ErrUsernameTaken,
	idxProviderUser:    domain.ErrIdentityLinkedElsewhere,
	idxAccountProvider: domain.ErrProviderAlreadyBound,
}

// duplicateKeyError maps a duplicate key write error to the domain conflict
// for the violated index. It returns nil when err is not a duplicate key error.
func duplicateKeyError(err error) error {
	if !mongo.IsDuplicateKeyError(err) {
		return nil
	}
	if mapped, ok := conflictByIndex[violatedIndex(err)]; ok {
		return mapped
	}
	return domain.ErrConflict
}

// violatedIndex extracts the index name from an E11000 message such as
// "E11000 duplicate key error collection: db.accounts index: uniq_account_email dup key: {...}".
func violatedIndex(err error) string {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if name := indexFromMessage(e.Message); name != "" {
				return name
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		return indexFromMessage(ce.Message)
	}
	return indexFromMessage(err.Error())
}

func indexFromMessage(msg string) string {
	const marker = "index: "
	i := strings.Index(msg, marker)
	if i < 0 {
		return ""
	}
	fields := strings.Fields(msg[i+len(marker):])
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
