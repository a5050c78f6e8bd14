package queries

import (
	"embed"
	"fmt"
)

//go:embed insert/*.sql schema/*.sql select/*.sql update/*.sql
var Files embed.FS

type InsertQueries struct {
	Metadata      string
	StatisticsRun string
}

type SchemaQueries struct {
	CreateTables string
}

type SelectQueries struct {
	MetaDataBySymbol       string
	MostRecentDateBySymbol string
	TimeSeriesData         string
}

type UpdateQueries struct {
	LastRefreshedDate string
}

type QueryHelperStruct struct {
	Insert InsertQueries
	Schema SchemaQueries
	Select SelectQueries
	Update UpdateQueries
}

var QueryHelper = QueryHelperStruct{
	Insert: InsertQueries{
		Metadata:      "insert/metadata.sql",
		StatisticsRun: "insert/statistics_run.sql",
	},
	Schema: SchemaQueries{
		CreateTables: "schema/create_tables.sql",
	},
	Select: SelectQueries{
		MetaDataBySymbol:       "select/meta_data_by_symbol.sql",
		MostRecentDateBySymbol: "select/most_recent_date_by_symbol.sql",
		TimeSeriesData:         "select/time_series_data.sql",
	},
	Update: UpdateQueries{
		LastRefreshedDate: "update/last_refreshed_date.sql",
	},
}

// Get returns the embedded query, a missing file is a programming error
func Get(path string) string {
	content, err := Files.ReadFile(path)
	if err != nil {
		panic(fmt.Errorf("error reading query file: %w", err))
	}

	return string(content)
}
