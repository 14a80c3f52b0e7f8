// Package agent maps OpenAI model names onto upstream chat agents.
//
// The upstream identifies agents by display names that clients rarely
// reproduce exactly ("Nano Banana Pro🔥" arrives as "nano banana pro"), so
// resolution is fuzzy: names are normalized to lowercase alphanumerics plus
// CJK characters, then compared token-wise with a Ratcliff/Obershelp
// similarity ratio. Resolution runs in three tiers with decreasing cost:
// bound group members, existing chat groups, then the full agent catalog.
package agent
