/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package ddb implements datastore.DocumentStore on AWS DynamoDB.
//
// Documents live in a single-table layout. Each entity family occupies
// one collection partition on a secondary index, and a document's
// primary-key attributes are derived from index-map patterns such as
// "ACTIVITY#{Id}" by substituting attribute values into {Field} macros.
//
// Transactions are staged write sets: writes issued under a session
// accumulate as TransactWriteItems entries (with a local overlay so
// session reads see them) and commit in one atomic call, bounded by the
// DynamoDB limit of 100 items per transaction.
package ddb
