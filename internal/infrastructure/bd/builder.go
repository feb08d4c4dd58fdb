package db

import (
	"fmt"
	"sort"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"gear-guard/pkg/types"
)

// ApplyListParams добавляет к запросу фильтры, сортировку и пагинацию.
// Поля, которых нет в allowedMap, молча игнорируются.
func ApplyListParams(builder sq.SelectBuilder, filter types.Filter, allowedMap map[string]string) sq.SelectBuilder {
	builder = ApplyFilters(builder, filter, allowedMap)

	if len(filter.Sort) > 0 {
		// порядок ключей в map случаен, а ORDER BY должен быть стабильным
		fields := make([]string, 0, len(filter.Sort))
		for f := range filter.Sort {
			fields = append(fields, f)
		}
		sort.Strings(fields)

		for _, jsonField := range fields {
			dbCol, ok := allowedMap[jsonField]
			if !ok {
				continue
			}
			sqlDir := "ASC"
			if strings.ToLower(filter.Sort[jsonField]) == "desc" {
				sqlDir = "DESC"
			}
			builder = builder.OrderBy(fmt.Sprintf("%s %s", dbCol, sqlDir))
		}
	}

	if filter.WithPagination {
		if filter.Limit > 0 {
			builder = builder.Limit(uint64(filter.Limit))
		}
		if filter.Offset > 0 {
			builder = builder.Offset(uint64(filter.Offset))
		}
	}

	return builder
}

// ApplyFilters — только WHERE-часть, без сортировки и пагинации (для COUNT).
func ApplyFilters(builder sq.SelectBuilder, filter types.Filter, allowedMap map[string]string) sq.SelectBuilder {
	fields := make([]string, 0, len(filter.Filter))
	for f := range filter.Filter {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	for _, jsonField := range fields {
		dbCol, ok := allowedMap[jsonField]
		if !ok {
			continue
		}
		val := filter.Filter[jsonField]
		if s, ok := val.(string); ok && strings.Contains(s, ",") {
			builder = builder.Where(sq.Eq{dbCol: strings.Split(s, ",")})
		} else {
			builder = builder.Where(sq.Eq{dbCol: val})
		}
	}
	return builder
}

// ApplyDateRange ограничивает колонку диапазоном [from, to], обе границы включительно.
func ApplyDateRange(builder sq.SelectBuilder, column string, from, to *time.Time) sq.SelectBuilder {
	if from != nil {
		builder = builder.Where(sq.GtOrEq{column: *from})
	}
	if to != nil {
		builder = builder.Where(sq.LtOrEq{column: *to})
	}
	return builder
}

// ApplySearch: ILIKE по любой из колонок.
func ApplySearch(builder sq.SelectBuilder, search string, columns ...string) sq.SelectBuilder {
	search = strings.TrimSpace(search)
	if search == "" || len(columns) == 0 {
		return builder
	}
	or := sq.Or{}
	for _, col := range columns {
		or = append(or, sq.ILike{col: "%" + search + "%"})
	}
	return builder.Where(or)
}
