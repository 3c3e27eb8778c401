package redis

import (
	"fmt"
	"time"
)

const (
	documentTTL   = 24 * time.Hour
	applyLockTTL  = 30 * time.Second
	attemptWindow = time.Minute
	maxAttempts   = 5
)

// Key layout:
//
//	cache:<key>                      cached document or query result
//	session:<client_id>              session record
//	apply:<job_id>:<applicant_id>    in-flight application submission
//	attempts:<key>                   sign-in attempts in the current window
//	revoked:<token_id>               revoked bearer token
func cacheKey(key string) string { return "cache:" + key }

func sessionKey(clientID string) string { return "session:" + clientID }

func applyKey(jobID, applicantID string) string {
	return fmt.Sprintf("apply:%s:%s", jobID, applicantID)
}

func attemptsKey(key string) string { return "attempts:" + key }

func revokedKey(tokenID string) string { return "revoked:" + tokenID }
