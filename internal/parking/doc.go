// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

/*
Package parking holds the request-path state of Parkcast: the landmark
catalog, the live occupancy store and the geospatial ranker.

# Catalog

A Catalog is an ordered, immutable set of landmarks. Its order is the
tie-break for equal ranking distances. Catalogs come from a CSV seed
(LoadCatalogCSV) or the built-in DefaultLandmarks.

# Live Occupancy

LiveStore keeps one free-spot counter per landmark:

	park:  available = max(0, available-1)
	leave: available = min(capacity, available+1)

Each event is one read-modify-write under that landmark's mutex, so events
for different landmarks never contend. Snapshot quiesces writers with a
store-wide barrier so every value it returns is one the landmark held. An
optional Journal makes counters survive restarts; a journal failure leaves the
counter unchanged.

# Ranking

Ranker answers "what is free near me": landmarks strictly closer than the
radius, nearest first, each with its live count and a model prediction for
the current hour and weekday. A missing model yields ml_count=0 instead of an
error.
*/
package parking
