package service

import (
	"github.com/guregu/null"

	"shortener/internal/repo"
)

type Link struct {
	ID        string `json:"id"`
	TargetURL string `json:"targetUrl"`
}

// Visit is the request metadata recorded for one redirect.
type Visit struct {
	Referer   null.String
	UserAgent null.String
}

type CounterLinkStatistics struct {
	Amount    int64       `json:"amount"`
	Referer   null.String `json:"referer"`
	UserAgent null.String `json:"userAgent"`
}

func toServiceLink(e repo.LinkEntity) Link {
	return Link{
		ID:        e.ID,
		TargetURL: e.TargetURL,
	}
}

func toServiceStatistics(entities []repo.CounterStatistic) []CounterLinkStatistics {
	stats := make([]CounterLinkStatistics, 0, len(entities))
	for _, e := range entities {
		stats = append(stats, CounterLinkStatistics{
			Amount:    e.Amount,
			Referer:   e.Referer,
			UserAgent: e.UserAgent,
		})
	}
	return stats
}
