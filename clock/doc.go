/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

/*
Package clock reads system clocks into timespec.Timestamp values.

Supported methods include
 - reading a clock through Now, which wraps the clock_gettime syscall
 - reading a clock's resolution through Resolution
 - mapping human readable clock names to clock ids through ClockIDFromName
 - System, a clock bound to one clock id that periodic loops can read and sleep on

Periodic loops should measure their cadence on CLOCK_MONOTONIC, which is not
stepped when the wall clock is set.
*/
package clock
