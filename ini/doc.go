// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

/*
Package ini provides a parser, an in-memory store, and a serializer for a simple
INI-like configuration format.

The parser is lenient: lines it cannot understand are logged and skipped, so a
partly broken file still yields every property that could be read.

Syntax

A file is a sequence of lines. Everything from the first semicolon (';') or
hash ('#') on a line to the end of the line is a comment, so comments may
follow a property:

	key = value ; trailing comment

Space and tab characters at the beginning and end of a line are ignored, as
is any line that is empty once its comment has been removed.

A property is a key and a value separated by the first equals sign ('='):

	key=value

Spaces and tabs around the key and around the value are ignored. A value made
up only of spaces is kept as a single space (" "), which distinguishes an
explicitly blank value from an empty one:

	blank =   ; stored as " "
	empty =

Properties may be grouped into sections. A section starts with its name in
square brackets on its own line and lasts until the next section name:

	[section]
	key1=value1
	key2=value2

Properties before the first section name belong to the section named by the
empty string (""), which can also be written explicitly as "[]".

Repeated names

If a key appears more than once in a section, the last value wins. A section
name may appear more than once; its properties are merged.

Ordering

A Store remembers the order in which sections and keys were first added.
Enumeration and serialization follow that order.
*/
package ini
