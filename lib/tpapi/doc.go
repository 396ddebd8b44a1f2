// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package tpapi is a read-only client for the TargetProcess REST API
// (v1).
//
// [Client.Get] is the single transport path: it asks the connectivity
// gate first, then issues one GET against {base}/{endpoint} through the
// shared connection pool, with the API token and the optional query
// parameters (include, where, take, skip, orderby) in the query string.
// The response is normalized into a list of [Record] values regardless
// of which of the three shapes TargetProcess returned: a bare array, an
// object wrapping an "Items" array, or a single object.
//
// The entity operations ([Client.GetProjects], [Client.Search],
// [Client.GetUserStories], [Client.GetBugs], [Client.GetFeatures],
// [Client.GetSprints], [Client.GetTasks], [Client.GetUsers]) fix the
// endpoint, the related-entity include list and the default page size,
// and translate their typed filters into a where clause with
// [tpquery.ConditionsFor].
//
// Failures are concrete types checked with errors.As:
// [*ConfigurationError] from [FromSettings] when the URL or token is
// missing, [*ConnectivityError] when the gate refuses the call before
// any network I/O, and [*UpstreamError] for non-2xx responses. Nothing
// is retried.
//
// A Client is safe for concurrent use. It does not own the pool: the
// process that created the [httppool.Pool] closes it.
package tpapi
