package comparative

import (
	"strings"

	"github.com/iWorld-y/workforce_radar/app/workforce_radar/pkg/catalog"
)

var countryAliases = buildAliases(map[string][]string{
	"United States":        {"usa", "us", "u.s.", "u.s.a.", "united states of america", "america", "the united states"},
	"United Kingdom":       {"uk", "u.k.", "great britain", "britain", "england", "the united kingdom"},
	"China":                {"prc", "people's republic of china", "mainland china", "china mainland", "中国"},
	"South Korea":          {"korea", "republic of korea", "korea, republic of", "rok"},
	"Germany":              {"deutschland", "federal republic of germany"},
	"Netherlands":          {"the netherlands", "holland"},
	"United Arab Emirates": {"uae", "u.a.e."},
	"Japan":                {"nippon", "日本"},
	"India":                {"bharat", "republic of india"},
	"Russia":               {"russian federation"},
})

var industryAliases = buildAliases(map[string][]string{
	"Technology":         {"tech", "it", "information technology", "software", "saas", "internet"},
	"Financial Services": {"finance", "financial", "fintech", "banking", "banks"},
	"Healthcare":         {"health care", "health", "medical", "hospitals"},
	"Pharmaceuticals":    {"pharma", "biotech", "life sciences"},
	"Retail":             {"e-commerce", "ecommerce", "retail trade"},
	"Manufacturing":      {"industrial", "industrials"},
	"Telecommunications": {"telecom", "telco"},
	"Energy":             {"oil and gas", "oil & gas", "utilities"},
	"Consulting":         {"professional services", "management consulting"},
})

// buildAliases 把别名与标准名本身都按归一化标题登记
func buildAliases(table map[string][]string) map[string]string {
	out := make(map[string]string)
	for canonical, aliases := range table {
		out[catalog.NormalizeTitle(canonical)] = canonical
		for _, a := range aliases {
			out[catalog.NormalizeTitle(a)] = canonical
		}
	}
	return out
}

// CanonicalCountry 返回国家的标准名，空白输入返回空字符串
func CanonicalCountry(label string) string {
	return canonicalize(countryAliases, label)
}

// CanonicalIndustry 返回行业的标准名，空白输入返回空字符串
func CanonicalIndustry(label string) string {
	return canonicalize(industryAliases, label)
}

func canonicalize(aliases map[string]string, label string) string {
	cleaned := strings.Join(strings.Fields(label), " ")
	if cleaned == "" {
		return ""
	}
	if canonical, ok := aliases[catalog.NormalizeTitle(cleaned)]; ok {
		return canonical
	}
	return cleaned
}

// groupKey 分组键为标准名的小写形式
func groupKey(canonical string) string {
	return strings.ToLower(canonical)
}
