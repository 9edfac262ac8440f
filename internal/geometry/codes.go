package geometry

import "strings"

// Some upstream feeds carry FIPS-style country codes that collide with ISO
// codes for unrelated territories: FIPS "KS" means South Korea (ISO "KR"),
// and FIPS "AS" means Australia while ISO "AS" is American Samoa. Matching
// must therefore go through this explicit table, never string similarity.
var codeOverrides = map[string]string{
	"AS": "AU", // Australia (FIPS)
	"BX": "BN", // Brunei (FIPS)
	"CB": "KH", // Cambodia (FIPS)
	"BM": "MM", // Myanmar / Burma (FIPS)
	"JA": "JP", // Japan (FIPS)
	"KS": "KR", // South Korea (FIPS)
	"RP": "PH", // Philippines (FIPS)
	"SN": "SG", // Singapore (FIPS)
	"VM": "VN", // Vietnam (FIPS)
}

// CanonicalCode normalizes a region code (trim, uppercase) and resolves
// known FIPS aliases to their canonical ISO form.
func CanonicalCode(code string) string {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if iso, ok := codeOverrides[normalized]; ok {
		return iso
	}
	return normalized
}
