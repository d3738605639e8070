// Package provider implements the collectors that fetch raw incident records
// from upstream services: Grist tables for the department and metropolitan
// feeds, and the Bison Futé DATEX II publication for DIR Ouest floods.
package provider
