package users

import (
	"strconv"
	"strings"

	"github.com/google/uuid"

	pkgerrors "github.com/timele/timele-backend/pkg/errors"
)

// AppNamespace is the fixed UUIDv5 namespace for deriving external ids
// of legacy-imported users. Changing it would orphan every migrated
// identity, so it is a compile-time constant.
var AppNamespace = uuid.MustParse("9f2c61a0-3f45-5e7b-8d12-c04b8f6a91d3")

// LegacyExternalID derives the deterministic external id for a migrated
// internal id: uuid_v5(AppNamespace, decimal(internal_id)).
func LegacyExternalID(internalID int64) uuid.UUID {
	return uuid.NewSHA1(AppNamespace, []byte(strconv.FormatInt(internalID, 10)))
}

// ParseExternalID validates the wire format of a user identifier. A
// malformed value is an invalid_id_format error, distinct from a
// well-formed id that resolves to nothing.
func ParseExternalID(raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeInvalidIDFormat, "user id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInvalidIDFormat, err, "user id must be a UUID")
	}
	return id, nil
}
