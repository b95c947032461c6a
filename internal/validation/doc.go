/*
Package validation provides rule-driven field validation and security screening for
payment, wallet and account forms.

# Architecture

The module follows Clean Architecture principles:
  - domain: Rules, schemas, results, security configuration and the schema factories
  - service: Pattern library, sanitizer, field validator, security scanner, strength
    scorer, Luhn checksum, lockout tracker and file upload validator
  - usecase: Form orchestration (rate-limit gate, per-field pipeline, attempt tracking,
    duplicate-submission guard)
  - repository: Duplicate-submission key-value stores (memory, MySQL, PostgreSQL)
  - http: HTTP handlers and DTOs

# Pipeline

For every field of a schema, in declaration order:

	raw value -> Sanitizer -> Field Validator -> Security Scanner -> aggregate

The sanitized value of one rule is the input of the next rule on the same field.
Errors block submission; warnings never affect validity.

# Sensitive Data

CVV values never leave the validator (sanitized value is always nil). SSN values are
replaced by vault ciphertext. Card numbers are masked to first four and last four digits.

The root package also carries custom jellydator/validation rules shared by DTOs.
*/
package validation
