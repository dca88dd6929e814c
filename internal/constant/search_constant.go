package constant

// GeneralItemKey is the result key used by the whole-photo fallback when no
// candidate category could be inferred.
const GeneralItemKey = "general_item"

// RankPromptTemplate drives the per-candidate ranking call.
// Args: category, subtype line, description line, numbered hit listing,
// blocked domains, domestic domains.
const RankPromptTemplate = `You are a fashion shopping assistant. A user photographed an item and wants to buy it online.

ITEM
- Category: %s%s%s

SEARCH RESULTS (reverse image search)
%s

TASK
Pick the 3 to 5 links most likely to sell this exact item, best first.

RANKING RULES (highest priority first):
1. Same character or graphic print as the item.
2. Same color.
3. Same category and sub-type.
4. General visual similarity.

HARD CONSTRAINTS:
- Only pick links that appear in SEARCH RESULTS above. Never invent a URL.
- Reject pages that are not a single product page: reviews, Q&A, search or category listing pages, login pages, community boards.
- Reject social media, image search engines, blogs, and magazine/editorial sites. Blocked domains include: %s
- Prefer domestic retailers. At least 2 of your picks must come from these domains when possible: %s

OUTPUT
Respond with ONLY this JSON, no other text:
{"links": ["https://...", "https://..."]}`

// FallbackPromptTemplate drives the single whole-photo call used when no
// candidates exist. The model must both infer the category and pick links.
// Args: numbered hit listing, blocked domains.
const FallbackPromptTemplate = `You are a fashion shopping assistant. A user photographed an outfit and wants to buy the main wearable item in it.

SEARCH RESULTS (reverse image search on the whole photo)
%s

TASK
1. Infer the most likely category of the main item. One of: tops, bottoms, dress, shoes, bag, accessory.
2. Pick the 3 to 5 links most likely to sell that item, best first.

HARD CONSTRAINTS:
- Only pick links that appear in SEARCH RESULTS above. Never invent a URL.
- Reject pages that are not a single product page: reviews, Q&A, search or category listing pages, login pages, community boards.
- Reject social media, image search engines, blogs, and magazine/editorial sites. Blocked domains include: %s

OUTPUT
Respond with ONLY this JSON, no other text:
{"category": "tops", "links": ["https://...", "https://..."]}`
