// Package slack provides the Slack conversations.history cursor walk
// shared by any stream adapter polling a channel's message history.
package slack

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	goslack "github.com/slack-go/slack"
)

// Paginate walks conversations.history from params forward across up to
// maxPages pages, calling visit for each message in the order the API
// returns them (newest first). visit returns false to stop early, once
// a caller-specific match has been found, rather than spend every
// remaining page. Paginate returns the newest message timestamp seen,
// which callers use to advance a watermark.
func Paginate(ctx context.Context, api *goslack.Client, params *goslack.GetConversationHistoryParameters, maxPages int, visit func(goslack.Message) bool) (string, error) {
	newest := params.Oldest

	for page := 0; page < maxPages; page++ {
		history, err := api.GetConversationHistoryContext(ctx, params)
		if err != nil {
			return newest, fmt.Errorf("conversations.history failed: %w", err)
		}

		for _, msg := range history.Messages {
			if compareMessageID(msg.Timestamp, newest) > 0 {
				newest = msg.Timestamp
			}
			if !visit(msg) {
				return newest, nil
			}
		}

		if !history.HasMore || history.ResponseMetaData.NextCursor == "" {
			break
		}
		params.Cursor = history.ResponseMetaData.NextCursor
	}

	return newest, nil
}

// compareMessageID compares two Slack ts strings ("1234567890.123456")
// numerically so pagination can track the newest id seen without relying
// on lexical ordering.
func compareMessageID(a, b string) int {
	af, aerr := strconv.ParseFloat(a, 64)
	bf, berr := strconv.ParseFloat(b, 64)
	if aerr != nil || berr != nil {
		return strings.Compare(a, b)
	}
	switch {
	case af > bf:
		return 1
	case af < bf:
		return -1
	default:
		return 0
	}
}
