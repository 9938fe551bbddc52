// Package app provides the application layer of the dashboard.
//
// A Console owns one client's view state and drives the session lifecycle
// (restore, login, logout) and dashboard refreshes against domain interfaces.
// Consoles keeps one Console per web client and evicts idle ones.
package app
