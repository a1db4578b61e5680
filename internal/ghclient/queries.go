package ghclient

import (
	"embed"
	"fmt"
)

//go:embed queries/*.graphql
var queryFiles embed.FS

// Queries loaded at init time
var reviewThreadsQuery string

func init() {
	data, err := queryFiles.ReadFile("queries/review_threads.graphql")
	if err != nil {
		panic(fmt.Sprintf("failed to load review_threads.graphql: %v", err))
	}
	reviewThreadsQuery = string(data)
}
