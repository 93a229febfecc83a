// Package grocery guesses which seeded category a food name belongs to.
package grocery

import "strings"

// Fallback is the category suggested when nothing matches.
const Fallback = "Other"

// Categorize returns the seeded category name for a food item. Matching is
// case-insensitive: whole-name keywords win, then the first substring
// keyword in rule order.
func Categorize(itemName string) string {
	name := strings.ToLower(strings.TrimSpace(itemName))
	if name == "" {
		return Fallback
	}

	if cat, ok := exactIndex[name]; ok {
		return cat
	}

	for _, r := range rules {
		for _, kw := range r.contains {
			if strings.Contains(name, kw) {
				return r.category
			}
		}
	}
	return Fallback
}

type rule struct {
	category string
	exact    []string
	// contains is checked in order, so longer phrases come first.
	contains []string
}

// rules are evaluated top to bottom for substring matches. Categories whose
// keywords overlap others ("ice cream" vs "cream") are listed first.
var rules = []rule{
	{
		category: "Frozen",
		exact:    []string{"ice cream", "frozen pizza", "frozen peas", "frozen waffles", "popsicles", "sorbet"},
		contains: []string{"frozen", "ice cream", "popsicle", "sorbet", "gelato"},
	},
	{
		category: "Condiments/Spices",
		exact: []string{
			"salt", "pepper", "ketchup", "mustard", "mayonnaise", "mayo", "vinegar", "soy sauce",
			"hot sauce", "salsa", "relish", "honey", "cumin", "paprika", "oregano", "cinnamon",
			"chili powder", "garlic powder", "olive oil", "oil",
		},
		contains: []string{
			"peanut butter", "olive oil", "maple syrup", "hot sauce", "soy sauce", "bbq sauce",
			"dressing", "seasoning", "spice", "sauce", "vinegar", "powder", "ketchup", "mustard",
			"syrup", "oil",
		},
	},
	{
		category: "Meat & Seafood",
		exact: []string{
			"chicken", "beef", "pork", "turkey", "bacon", "sausage", "ham", "steak", "salmon",
			"shrimp", "tuna", "fish", "lamb", "crab", "cod", "tilapia", "hot dogs",
		},
		contains: []string{
			"chicken breast", "chicken thigh", "ground beef", "ground turkey", "deli meat",
			"pork chop", "hot dog", "chicken", "beef", "pork", "salmon", "shrimp", "sausage", "bacon",
		},
	},
	{
		category: "Dairy",
		exact: []string{
			"milk", "eggs", "butter", "cheese", "yogurt", "cream cheese", "sour cream",
			"heavy cream", "half and half", "cottage cheese",
		},
		contains: []string{
			"cream cheese", "sour cream", "heavy cream", "cottage cheese", "half and half",
			"greek yogurt", "oat milk", "almond milk", "yogurt", "cheese", "milk", "butter", "cream", "egg",
		},
	},
	{
		category: "Produce",
		exact: []string{
			"apple", "apples", "banana", "bananas", "orange", "oranges", "lemon", "lemons", "lime",
			"avocado", "tomato", "tomatoes", "potato", "potatoes", "onion", "onions", "garlic",
			"lettuce", "spinach", "kale", "broccoli", "carrots", "celery", "cucumber", "mushrooms",
			"grapes", "strawberries", "blueberries", "pear", "peach", "cilantro", "basil", "ginger",
			"zucchini", "green beans",
		},
		contains: []string{
			"salad mix", "baby spinach", "green onion", "sweet potato", "bell pepper", "cherry tomato",
			"romaine", "cabbage", "cauliflower", "squash", "melon", "berries", "berry", "lettuce",
			"spinach", "apple", "banana", "tomato", "potato", "onion", "carrot", "celery", "fruit",
		},
	},
	{
		category: "Beverages",
		exact:    []string{"water", "juice", "coffee", "tea", "soda", "beer", "wine", "kombucha", "lemonade"},
		contains: []string{"sparkling water", "orange juice", "coffee", "juice", "soda", "water", "beer", "wine", "drink", "tea"},
	},
	{
		category: "Snacks",
		exact:    []string{"chips", "crackers", "cookies", "popcorn", "pretzels", "candy", "chocolate", "trail mix", "nuts"},
		contains: []string{"granola bar", "trail mix", "fruit snack", "chip", "cracker", "cookie", "popcorn", "pretzel", "candy", "chocolate", "snack"},
	},
}

var exactIndex = buildExactIndex()

func buildExactIndex() map[string]string {
	idx := make(map[string]string)
	for _, r := range rules {
		for _, name := range r.exact {
			idx[name] = r.category
		}
	}
	return idx
}
