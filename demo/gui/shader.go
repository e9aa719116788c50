package gui

import (
	"fmt"

	"gonoisesurface/surface"
)

var vertexShader = `
#version 410 core
layout (location = 0) in vec3 position;
layout (location = 1) in vec2 uv;
layout (location = 2) in float colorNoise;
layout (location = 3) in float alphaNoise;

uniform mat4 viewProjection;

out vec2 vUv;
out float vColorNoise;
out float vAlphaNoise;

void main() {
	vUv = uv;
	vColorNoise = colorNoise;
	vAlphaNoise = alphaNoise;
	gl_Position = viewProjection * vec4(position, 1.0);
}
` + "\x00"

// fragmentShader is surface.Shade for the GPU. Output is premultiplied.
var fragmentShader = fmt.Sprintf(`
#version 410 core
in vec2 vUv;
in float vColorNoise;
in float vAlphaNoise;

uniform vec4 color1;
uniform vec4 color2;
uniform vec4 color3;
uniform float edgeAlpha;
uniform float alphaNoiseStrength;

out vec4 fragColor;

void main() {
	float d = min(min(vUv.x, vUv.y), min(1.0 - vUv.x, 1.0 - vUv.y));
	float edge = smoothstep(0.0, %.4f, d);

	vec4 c = mix(color1, color2, vColorNoise * 0.5 + 0.5);
	c = mix(c, color3, vUv.x * vUv.y);

	float noiseAlpha = c.a * (vAlphaNoise * 0.5 + 0.5) * max(alphaNoiseStrength, 0.0);
	float alpha = mix(clamp(edgeAlpha, 0.0, 1.0), noiseAlpha, edge);
	fragColor = vec4(c.rgb * alpha, alpha);
}
`+"\x00", surface.EdgeWidth)
