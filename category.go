package finetract

import "strings"

// Category is a fixed spending bucket. The set is closed: categorization is
// a deterministic table lookup, not a learned model.
type Category string

const (
	CategoryFood          Category = "Food"
	CategoryTravel        Category = "Travel"
	CategoryEducation     Category = "Education"
	CategoryStationery    Category = "Stationery"
	CategoryDairy         Category = "Dairy"
	CategoryShopping      Category = "Shopping"
	CategoryEntertainment Category = "Entertainment"
	CategoryTech          Category = "Tech"
	CategoryLocalShop     Category = "Local Shop"
	CategoryOther         Category = "Other"
)

// categoryTable maps keywords to buckets. Order is the tie-break priority:
// when two buckets match keywords of equal length, the earlier bucket wins.
var categoryTable = []struct {
	cat      Category
	keywords []string
}{
	{CategoryFood, []string{
		"zomato", "swiggy", "dominos", "mcdonald", "kfc", "biryani",
		"restaurant", "bakery", "kitchen", "canteen", "burger", "pizza",
		"cafe", "food", "eats", "mess",
	}},
	{CategoryTravel, []string{
		"uber", "ola", "rapido", "irctc", "redbus", "makemytrip",
		"petrol", "diesel", "fuel", "metro", "train", "flight",
		"bus", "cab", "taxi", "toll",
	}},
	{CategoryEducation, []string{
		"udemy", "coursera", "unacademy", "byjus", "tuition", "college",
		"school", "course", "exam", "fees", "library",
	}},
	{CategoryStationery, []string{
		"stationery", "stationary", "xerox", "photocopy", "printout",
		"notebook", "pen",
	}},
	{CategoryDairy, []string{
		"amul", "dairy", "milk", "curd", "paneer",
	}},
	{CategoryShopping, []string{
		"amazon", "flipkart", "myntra", "meesho", "ajio", "shopping",
		"mall", "mart", "store",
	}},
	{CategoryEntertainment, []string{
		"netflix", "spotify", "hotstar", "sonyliv", "bookmyshow",
		"prime video", "youtube", "cinema", "movie", "game",
	}},
	{CategoryTech, []string{
		"recharge", "broadband", "airtel", "jio", "croma", "electronics",
		"gadget", "mobile", "wifi",
	}},
	{CategoryLocalShop, []string{
		"kirana", "provision", "general store", "local shop",
	}},
}

// knownBrands is the display-name lookup for merchant derivation. First
// case-insensitive substring hit wins, so more specific names come first.
var knownBrands = []string{
	"Zomato", "Swiggy", "Dominos", "McDonald", "KFC",
	"Uber", "Ola", "Rapido", "IRCTC", "RedBus",
	"Amazon", "Flipkart", "Myntra", "Meesho",
	"Netflix", "Spotify", "Hotstar", "SonyLIV", "BookMyShow",
	"Prime Video", "Youtube", "Apple",
	"Udemy", "Coursera", "Unacademy",
	"Amul", "Airtel", "Jio", "Croma", "Paytm", "PhonePe",
}

// categorize picks the bucket whose matching keyword is longest; ties go to
// the earlier bucket. text must already be lowercased.
func categorize(text string) Category {
	best := CategoryOther
	bestLen := 0
	for _, bucket := range categoryTable {
		for _, kw := range bucket.keywords {
			if len(kw) > bestLen && strings.Contains(text, kw) {
				best = bucket.cat
				bestLen = len(kw)
			}
		}
	}
	return best
}

// brandName returns the first known brand appearing in text, or "".
func brandName(text string) string {
	lower := strings.ToLower(text)
	for _, b := range knownBrands {
		if strings.Contains(lower, strings.ToLower(b)) {
			return b
		}
	}
	return ""
}
