// SPDX-License-Identifier: GPL-3.0-or-later

// Package dnswalk resolves a domain name to an address (or to its mail
// exchange) by walking the DNS delegation hierarchy itself, starting
// from a configured set of root servers, without delegating to a
// recursive resolver.
//
// [EncodeName] and [DecodeName] implement the RFC 1035 wire format for
// domain names, including message-compression pointers. [NewQuery] and
// [*Query] construct and pack iterative query messages. [ParseResponse]
// and [*Response] unpack and validate raw responses. [NewResolver] and
// [*Resolver] drive the hop-by-hop walk: referral, CNAME indirection,
// mail-exchange follow-up, and name-error classification, under a hard
// hop bound.
//
// This package deliberately does not delegate wire parsing to
// [github.com/miekg/dns]; the tests use that package as the reference
// implementation to cross-validate against.
package dnswalk
