package sec

// InvestmentInfo is one entry of the SEC FundFactsheet investment-constraint
// response for a fund. Only the fields this application consumes are mapped.
type InvestmentInfo struct {
	ClassAbbrName     string `json:"class_abbr_name"`
	MinimumSubCur     string `json:"minimum_sub_cur"`
	MinimumRedemptCur string `json:"minimum_redempt_cur"`
}

// DividendInfo is one entry of the SEC FundFactsheet dividend-policy
// response for a fund.
type DividendInfo struct {
	ClassAbbrName  string `json:"class_abbr_name"`
	DividendPolicy string `json:"dividend_policy"`
}
