package renderer

// paletteSize is the number of material codes the hull shader can color.
const paletteSize = 128

const hullVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in int aMaterial;

uniform mat4 uViewProj;

out vec3 vNormal;
out vec3 vWorld;
flat out int vMaterial;

void main() {
	vWorld = aPos;
	vNormal = aNormal;
	vMaterial = aMaterial;
	gl_Position = uViewProj * vec4(aPos, 1.0);
}
`

const hullFragmentShader = `
#version 410 core

in vec3 vNormal;
in vec3 vWorld;
flat in int vMaterial;

uniform vec3 uEye;
uniform vec3 uPalette[128];

out vec4 FragColor;

void main() {
	if (vMaterial == 0) {
		discard;
	}
	vec3 base = uPalette[clamp(vMaterial, 0, 127)];
	vec3 n = normalize(vNormal);
	vec3 toEye = normalize(uEye - vWorld);
	float diffuse = abs(dot(n, toEye));
	FragColor = vec4(base * (0.35 + 0.65 * diffuse), 1.0);
}
`

// The pick pass writes the world position in fixed point and the packed
// vertex id. Every vertex of a triangle resolves to the same triangle, so
// the provoking vertex convention does not matter.
const pickVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 2) in int aMaterial;

uniform mat4 uViewProj;
uniform int uShard;

out vec3 vWorld;
flat out int vPacked;
flat out int vMaterial;

void main() {
	vWorld = aPos;
	vPacked = gl_VertexID * 100 + uShard;
	vMaterial = aMaterial;
	gl_Position = uViewProj * vec4(aPos, 1.0);
}
`

const pickFragmentShader = `
#version 410 core

in vec3 vWorld;
flat in int vPacked;
flat in int vMaterial;

layout (location = 0) out ivec4 outPick;

void main() {
	if (vMaterial == 0) {
		discard;
	}
	outPick = ivec4(ivec3(round(vWorld * 1000.0)), vPacked);
}
`

const overlayVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPos;

uniform mat4 uViewProj;

void main() {
	gl_Position = uViewProj * vec4(aPos, 1.0);
	gl_PointSize = 9.0;
}
`

const overlayFragmentShader = `
#version 410 core

uniform vec3 uColor;

out vec4 FragColor;

void main() {
	FragColor = vec4(uColor, 1.0);
}
`
