package repo

import "github.com/guregu/null"

type LinkEntity struct {
	ID        string `db:"id"`
	TargetURL string `db:"target_url"`
}

type StatisticEntity struct {
	LinkID    string      `db:"link_id"`
	Referer   null.String `db:"referer"`
	UserAgent null.String `db:"user_agent"`
}

// CounterStatistic is one (referer, user_agent) group of a link's statistics.
type CounterStatistic struct {
	Amount    int64       `db:"amount"`
	Referer   null.String `db:"referer"`
	UserAgent null.String `db:"user_agent"`
}
