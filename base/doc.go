/*

Package base provides base data structures and functions for feedsplit.

The base data structures and functions include:

* Dense Index

* Random Generator

* Delimited Text Parsing

*/
package base
