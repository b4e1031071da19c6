package ui

import (
	"github.com/desertthunder/spotlist/internal/tasks"
)

type genresFetchedMsg struct {
	genres []string
	err    error
}

type progressUpdateMsg tasks.ProgressUpdate

type lookupCompleteMsg struct {
	result *tasks.RecommendationsResult
	err    error
}

type browserOpenedMsg struct {
	err error
}
