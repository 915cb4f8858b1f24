package services

import (
	"github.com/travelit/backend/pkg/logger"
	"github.com/travelit/backend/pkg/response"
)

const msgInternal = "Internal server error."

// internalError logs the datastore cause and returns an opaque 500.
func internalError(op string, err error) error {
	logger.Error().Err(err).Str("op", op).Msg("datastore failure")
	return response.NewServerError(msgInternal)
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
