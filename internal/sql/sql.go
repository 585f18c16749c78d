// Package sql embeds the migrations and queries for the conversion history
// store.
package sql

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS

//go:embed queries/insert_conversion.sql
var InsertConversion string

//go:embed queries/list_conversions.sql
var ListConversions string

//go:embed queries/get_conversion.sql
var GetConversion string

//go:embed queries/conversion_stats.sql
var ConversionStats string

//go:embed queries/clear_conversions.sql
var ClearConversions string
