/*
Package canvas is the graph canvas engine: layout, viewport, hit-testing and scene
construction for a journey snapshot.

Everything here is a pure function of its inputs except Controller, which keeps the
interaction state (viewport, an in-progress pan, the selection) between pointer events.

# Coordinate spaces

Scene coordinates are where the layout places nodes. Screen coordinates are what the
pointer reports. A Viewport {TranslateX, TranslateY, Scale} maps one to the other:

	screen = scene*Scale + Translate

# Rendering

BuildScene turns snapshot × viewport into a Scene: plain shapes with colours and text.
Drawing backends consume a Scene and know nothing about journeys. See the svg and
raster sub-packages.
*/
package canvas
