package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// UnknownUser is the username placeholder for members that cannot be resolved,
// typically because they left the server after submitting.
const UnknownUser = "Unknown User"

// ExportCSV renders the submission data as CSV with one row per user:
// user id, resolved username, comma-joined wallet list. Rows are ordered by
// user ID so repeated exports of the same data are identical.
func (s *whitelistService) ExportCSV(resolver UsernameResolver) ([]byte, error) {
	snapshot := s.Snapshot()

	userIDs := make([]int64, 0, len(snapshot.SubmittedWallets))
	for userID := range snapshot.SubmittedWallets {
		userIDs = append(userIDs, userID)
	}
	sort.Slice(userIDs, func(i, j int) bool { return userIDs[i] < userIDs[j] })

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"User ID", "Username", "Wallets"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, userID := range userIDs {
		row := []string{
			strconv.FormatInt(userID, 10),
			resolver(userID),
			strings.Join(snapshot.SubmittedWallets[userID], ", "),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row for user %d: %w", userID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}

	return buf.Bytes(), nil
}
