// Package gd holds the game's entities (users, levels, songs, comments,
// messages, friend requests, rewards) and builds them from wire records.
//
// Field indexes are fixed by the game server. Every From* constructor is
// tolerant: missing or malformed fields leave zero values.
package gd
