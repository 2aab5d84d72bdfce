package matching

import "civicmatch-be/models"

// categoryKeywords maps each coarse problem category to the related
// keywords a resource may list itself under.
var categoryKeywords = map[models.ProblemCategory][]string{
	models.CategoryEnvironment: {"환경", "청소", "재활용", "쓰레기", "공원", "녹지"},
	models.CategoryTraffic:     {"교통", "도로", "주차", "신호등", "보행로", "자전거"},
	models.CategorySafety:      {"안전", "범죄", "방범", "가로등", "화재", "재난"},
	models.CategoryWelfare:     {"복지", "노인", "아동", "장애인", "저소득", "교육"},
	models.CategoryFacilities:  {"시설", "건물", "공공시설", "유지보수", "수리", "개선"},
}

// Expand widens a problem category into the set of keywords used for
// resource matching: the category itself plus its mapped keywords.
// An unknown category expands to just itself.
func Expand(category models.ProblemCategory) []string {
	expanded := []string{string(category)}
	for _, kw := range categoryKeywords[category] {
		if kw != string(category) {
			expanded = append(expanded, kw)
		}
	}
	return expanded
}
