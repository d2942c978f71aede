package sec

import (
	"sort"
	"strings"
)

// isFundLevelClass reports whether a class abbreviation denotes the
// fund-level entry rather than a distinct share class. The SEC API uses
// "", "-" and "main"/"Main" interchangeably for fund-level data.
func isFundLevelClass(classAbbr string) bool {
	return classAbbr == "" || classAbbr == "-" || strings.EqualFold(classAbbr, "main")
}

// SelectDefaultClass selects the share class to read factsheet data from
// when a fund reports multiple classes.
//
// Priority:
//  1. Exact (case-insensitive) match with the fund abbreviation
//  2. A fund-level entry ("", "-", "main")
//  3. First class alphabetically
func SelectDefaultClass(fundAbbr string, classNames []string) string {
	if len(classNames) == 0 {
		return ""
	}

	if fundAbbr != "" {
		for _, name := range classNames {
			if name != "" && strings.EqualFold(name, fundAbbr) {
				return name
			}
		}
	}

	for _, name := range classNames {
		if isFundLevelClass(name) {
			return name
		}
	}

	named := make([]string, 0, len(classNames))
	for _, name := range classNames {
		if name != "" {
			named = append(named, name)
		}
	}
	if len(named) > 0 {
		sort.Strings(named)
		return named[0]
	}

	return classNames[0]
}

// PickInvestment selects the investment entry for the fund's default class.
// Falls back to the first entry when no class matches.
func PickInvestment(fundAbbr string, list []InvestmentInfo) (InvestmentInfo, bool) {
	if len(list) == 0 {
		return InvestmentInfo{}, false
	}

	selected := ""
	if len(list) > 1 {
		names := make([]string, len(list))
		for i, item := range list {
			names[i] = item.ClassAbbrName
		}
		selected = SelectDefaultClass(fundAbbr, names)
	}

	for _, item := range list {
		if matchesClass(item.ClassAbbrName, selected) {
			return item, true
		}
	}
	return list[0], true
}

// PickDividend selects the dividend entry for the fund's default class.
// Falls back to the first entry when no class matches.
func PickDividend(fundAbbr string, list []DividendInfo) (DividendInfo, bool) {
	if len(list) == 0 {
		return DividendInfo{}, false
	}

	selected := ""
	if len(list) > 1 {
		names := make([]string, len(list))
		for i, item := range list {
			names[i] = item.ClassAbbrName
		}
		selected = SelectDefaultClass(fundAbbr, names)
	}

	for _, item := range list {
		if matchesClass(item.ClassAbbrName, selected) {
			return item, true
		}
	}
	return list[0], true
}

// matchesClass compares a class abbreviation against the selected class,
// treating all fund-level spellings as equivalent.
func matchesClass(classAbbr, selected string) bool {
	if isFundLevelClass(selected) {
		return isFundLevelClass(classAbbr)
	}
	return classAbbr == selected
}
